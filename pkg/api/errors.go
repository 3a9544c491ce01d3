package api

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyToken is returned by NewClient when no bot token is given
	ErrEmptyToken = errors.New("bot token is required")

	// ErrUnknownEventType is returned when an event carries a type tag outside
	// the eight known kinds
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrResolvePendingTarget is returned when ResolvePending gets neither or
	// both of a user and the everyone flag
	ErrResolvePendingTarget = errors.New("exactly one of userId or everyone must be provided")

	// ErrNoFile is returned when a file call has neither a file id nor a path
	ErrNoFile = errors.New("either fileId or file path must be provided")
)

// APIError describes a request the Bot API rejected
type APIError struct {
	Path        string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("bot api %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("bot api %s: status %d: %s", e.Path, e.StatusCode, e.Description)
}

// DecodeError reports a single event whose payload could not be decoded
type DecodeError struct {
	EventID int64
	Type    EventType
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode event %d (%s): %v", e.EventID, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
