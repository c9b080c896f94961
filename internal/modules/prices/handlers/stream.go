package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/pricesync/internal/events"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
)

// Subscriber is the event bus as seen by the stream handler.
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler) events.SubscriptionID
	Unsubscribe(id events.SubscriptionID)
}

// HandleStream handles GET /prices/stream. It upgrades to a websocket and
// forwards refresh progress events until the client disconnects.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// Incoming messages are discarded; ctx ends when the client closes.
	ctx := conn.CloseRead(r.Context())

	eventChan := make(chan *events.Event, streamBuffer)
	forward := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Stream buffer full, dropping event")
		}
	}

	ids := make([]events.SubscriptionID, 0, len(events.AllTypes))
	for _, eventType := range events.AllTypes {
		ids = append(ids, h.events.Subscribe(eventType, forward))
	}
	defer func() {
		for _, id := range ids {
			h.events.Unsubscribe(id)
		}
	}()

	h.log.Debug().Msg("Client connected to price stream")

	if err := h.write(ctx, conn, map[string]string{"type": "connected"}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Client disconnected from price stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-eventChan:
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Price stream write failed")
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, v)
}
