package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCoinID       = errors.New("cryptocurrency ID is required")
	ErrUpstreamUnavailable = errors.New("upstream unreachable")
	ErrIncompleteData      = errors.New("incomplete data received")
)

// NotFoundError is returned when the market-data provider has no record for a coin.
type NotFoundError struct {
	CoinID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No data found for %q. Please check the ID.", e.CoinID)
}

// UpstreamStatusError is a non-2xx response from an external API.
type UpstreamStatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s api error: http %d: %s", e.Service, e.StatusCode, e.Body)
}
