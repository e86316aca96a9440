// Package domain holds the error taxonomy of the quote feature.
package domain

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the mandatory pricing lookup fails
	// (network error, rate limit, timeout or provider error).
	ErrUpstreamUnavailable = errors.New("market data provider unavailable")
	// ErrUnknownTicker is returned when the provider has no usable data for the symbol.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrMetadataUnavailable marks a failed metadata lookup. It is logged, never returned.
	ErrMetadataUnavailable = errors.New("instrument metadata unavailable")
)
