// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	PriceRefreshStarted   EventType = "PRICE_REFRESH_STARTED"
	PriceBatchCompleted   EventType = "PRICE_BATCH_COMPLETED"
	PriceBatchWaiting     EventType = "PRICE_BATCH_WAITING"
	PriceRefreshCompleted EventType = "PRICE_REFRESH_COMPLETED"
	ErrorOccurred         EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, in lifecycle order.
var AllTypes = []EventType{
	PriceRefreshStarted,
	PriceBatchCompleted,
	PriceBatchWaiting,
	PriceRefreshCompleted,
	ErrorOccurred,
}

// Event represents a system event with typed data
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}
