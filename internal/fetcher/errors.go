package fetcher

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBlocked is returned when the site kept answering with an anti-bot
// response after the last attempt.
var ErrBlocked = errors.New("request blocked by anti-bot check")

// HTTPError is a non-2xx answer.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Blocked reports whether the status usually means a transient bot check.
func (e *HTTPError) Blocked() bool {
	return e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusTooManyRequests
}

// NetworkError is a transport failure: DNS, connect, timeout, reset.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type blockedError struct {
	cause *HTTPError
}

func (e *blockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBlocked.Error(), e.cause.Error())
}

func (e *blockedError) Is(target error) bool {
	return target == ErrBlocked
}

func (e *blockedError) Unwrap() error {
	return e.cause
}
