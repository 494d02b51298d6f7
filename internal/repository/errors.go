package repository

import "errors"

var (
	// ErrNightsUnavailable is returned by ClaimNights when any requested
	// night is already booked or blocked.
	ErrNightsUnavailable = errors.New("requested nights are not available")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)
