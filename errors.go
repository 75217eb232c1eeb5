package spacetraveling

import (
	"errors"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

var (
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = errors.New("post not found")

	// ErrFetchFailed wraps any failure talking to the content API.
	ErrFetchFailed = errors.New("content fetch failed")

	// ErrMalformedRecord is returned when a record lacks a required field.
	ErrMalformedRecord = errors.New("malformed content record")

	// ErrInvalidCursor is returned for page cursors that do not point at the
	// configured content API.
	ErrInvalidCursor = errors.New("invalid page cursor")

	// ErrLoadInProgress is returned when LoadMore is called while another
	// load on the same paginator has not finished.
	ErrLoadInProgress = errors.New("load already in progress")
)

// fetchError classifies a content client error. Already classified errors
// are only prefixed with op.
func fetchError(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFetchFailed), errors.Is(err, ErrMalformedRecord):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, prismic.ErrNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, err)
}

func missingField(uid, field string) error {
	if uid == "" {
		return fmt.Errorf("%w: missing %s", ErrMalformedRecord, field)
	}
	return fmt.Errorf("%w: %s: missing %s", ErrMalformedRecord, uid, field)
}
