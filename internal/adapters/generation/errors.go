package generation

import "errors"

// ErrBackend is returned when the backend cannot be reached, answers with an
// error status or sends an unreadable reply.
var ErrBackend = errors.New("generation backend error")
