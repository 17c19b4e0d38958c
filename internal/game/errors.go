package game

import "errors"

var (
	// ErrConfiguration reports a setting the game cannot run with.
	ErrConfiguration = errors.New("invalid game configuration")

	// ErrValidation reports a rejected win report.
	ErrValidation = errors.New("invalid input")
)

// ValidationError names the field that was missing from a win report.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
