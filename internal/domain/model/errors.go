package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMalformedInput marks a duration or score cell that is not a usable number.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnknownTest marks a test identifier outside the battery.
	ErrUnknownTest = errors.New("unknown test")
)
