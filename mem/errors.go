package mem

import "errors"

// Error kinds reported to callers. The engine guarantees that a failed
// operation leaves simulation state untouched.
var (
	ErrInvalidConfig      = errors.New("invalid simulation configuration")
	ErrNotStarted         = errors.New("no active simulation")
	ErrAlreadyStarted     = errors.New("simulation already active")
	ErrInvalidOperation   = errors.New("unknown operation")
	ErrInvalidSize        = errors.New("invalid allocation size")
	ErrOutOfRange         = errors.New("address out of range")
	ErrProcessNotFound    = errors.New("process not found")
	ErrInvalidFrame       = errors.New("invalid frame")
	ErrInsufficientMemory = errors.New("insufficient memory")
)
