package content

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when the backend doesn't have a record
	// with the requested id.
	ErrNotFound = errors.New("content not found")

	// ErrUnavailable is returned while the circuit breaker of the
	// backend is open.
	ErrUnavailable = errors.New("content backend unavailable")

	// ErrInvalidRecord is returned when the backend responds with a
	// malformed record.
	ErrInvalidRecord = errors.New("invalid content record")
)

// Record is a content record, as served by the content backend.
type Record struct {
	ID    string          `json:"id"`
	Type  string          `json:"type,omitempty"`
	Title string          `json:"title,omitempty"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// Fetcher loads content records from an external source.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id string) (*Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, id string) (*Record, error) { return f(ctx, id) }
