// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package listing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable matches every failure to obtain a listing.
	ErrUnavailable = errors.New("listing unavailable")
	ErrInvalidRepo = errors.New("repository must be owner/name")
	ErrEmptyFolder = errors.New("folder path is required")
)

// UnavailableError is returned for non-2xx responses, transport failures and
// malformed payloads. StatusCode is 0 when no response was received.
type UnavailableError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("listing unavailable: %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("listing unavailable: %s: %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
