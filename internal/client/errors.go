package client

import (
	"errors"
	"fmt"

	"rickmorty/viewer/internal/domain"
)

var (
	// ErrFetch matches every failure returned by FetchPage.
	ErrFetch = errors.New("catalog fetch failed")

	ErrNoCursor = errors.New("no cursor to fetch")
)

// FetchError is the single failure kind of the catalog client. Transport errors,
// non-2xx statuses and malformed payloads are not distinguished beyond the wrapped cause.
type FetchError struct {
	Cursor domain.Cursor
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrFetch, e.Cursor, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
