package service

import "errors"

var (
	// ErrCancelled is returned when the operator ends interactive input early.
	ErrCancelled = errors.New("assessment cancelled")
	// ErrRules is returned when rule preparation fails in strict mode.
	ErrRules = errors.New("rule tables rejected")
)
