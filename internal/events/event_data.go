package events

import "time"

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// RefreshStartedData contains data for PriceRefreshStarted events
type RefreshStartedData struct {
	RunID    string `json:"run_id"`
	Provider string `json:"provider"`
	Tickers  int    `json:"tickers"`
	Batches  int    `json:"batches"`
}

// EventType returns the event type for RefreshStartedData
func (d *RefreshStartedData) EventType() EventType {
	return PriceRefreshStarted
}

// BatchCompletedData contains data for PriceBatchCompleted events
type BatchCompletedData struct {
	RunID     string `json:"run_id"`
	Batch     int    `json:"batch"`
	Batches   int    `json:"batches"`
	Requested int    `json:"requested"`
	Received  int    `json:"received"`
	Error     string `json:"error,omitempty"`
}

// EventType returns the event type for BatchCompletedData
func (d *BatchCompletedData) EventType() EventType {
	return PriceBatchCompleted
}

// BatchWaitingData is emitted before the pause between two batches
type BatchWaitingData struct {
	RunID     string    `json:"run_id"`
	NextBatch int       `json:"next_batch"`
	Seconds   float64   `json:"seconds"`
	ResumeAt  time.Time `json:"resume_at"`
}

// EventType returns the event type for BatchWaitingData
func (d *BatchWaitingData) EventType() EventType {
	return PriceBatchWaiting
}

// RefreshCompletedData contains data for PriceRefreshCompleted events
type RefreshCompletedData struct {
	RunID      string `json:"run_id"`
	Provider   string `json:"provider"`
	Requested  int    `json:"requested"`
	Fetched    int    `json:"fetched"`
	DurationMs int64  `json:"duration_ms"`
	Canceled   bool   `json:"canceled,omitempty"`
}

// EventType returns the event type for RefreshCompletedData
func (d *RefreshCompletedData) EventType() EventType {
	return PriceRefreshCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
