package repository

import "errors"

// Sentinel kinds for rule store errors. A lookup that matches no rule is not
// an error; it falls back to DefaultScore or NoInterpretation.
var (
	// ErrUnavailable marks a store fault: closed handle, driver or I/O error.
	ErrUnavailable = errors.New("rule repository unavailable")
)
