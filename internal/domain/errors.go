package domain

import "errors"

var (
	// ErrMissingAPIKey is returned when the keyed provider is used without a configured key.
	ErrMissingAPIKey = errors.New("no Twelve Data API key configured")

	// ErrNotFound is returned when identifier resolution exhausts every source.
	ErrNotFound = errors.New("security not found")

	// ErrQuoteUnavailable is returned when a directly supplied ticker has no quote.
	ErrQuoteUnavailable = errors.New("quote unavailable")
)
