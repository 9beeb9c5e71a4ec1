package rules

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDecode   = errors.New("decode rule table")
	ErrCoverage = errors.New("rule coverage")
)
