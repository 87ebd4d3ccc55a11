package pals

import (
	"errors"
	"fmt"
)

// ErrPalNotFound is returned by [Client.Get] when the upstream responds with
// a well-formed envelope whose content list is empty. This is an expected
// user-input failure, not an operational one — callers should present it to
// the user without logging it as an error.
var ErrPalNotFound = errors.New("pals: no pal found")

// ErrAuthExpired is returned when the upstream responds with HTTP 401,
// indicating the API credential needs rotation.
var ErrAuthExpired = errors.New("pals: api credential expired")

// UnexpectedStatusError is returned for any HTTP status other than 200 or 401.
type UnexpectedStatusError struct {
	// Status is the HTTP status code received from the upstream.
	Status int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("pals: unexpected status %d", e.Status)
}
