package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrRatesUnavailable = errors.New("exchange rates unavailable")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrFetchFailed      = errors.New("fetch failed")
)

type FetchErrorKind string

const (
	FetchTimeout    FetchErrorKind = "timeout"
	FetchConnection FetchErrorKind = "connection"
	FetchStatus     FetchErrorKind = "status"
	FetchDecode     FetchErrorKind = "decode"
	FetchRequest    FetchErrorKind = "request"
)

// FetchError reports a failed call to the rates API.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetchFailed, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}
