package report

import (
	"errors"
	"fmt"
)

// ErrGeneration is matched by every generation failure.
var ErrGeneration = errors.New("report generation failed")

// GenerationFailure carries the cause of a failed generation call.
type GenerationFailure struct {
	Model string
	Err   error
}

func (f *GenerationFailure) Error() string {
	return fmt.Sprintf("%s (model %s): %v", ErrGeneration, f.Model, f.Err)
}

// Is reports ErrGeneration as matching.
func (f *GenerationFailure) Is(target error) bool { return target == ErrGeneration }

func (f *GenerationFailure) Unwrap() error { return f.Err }
