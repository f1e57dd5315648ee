package adaptive

import "errors"

var (
	// ErrInvalidOrder is returned when the filter order is below one.
	ErrInvalidOrder = errors.New("adaptive: order must be at least 1")
	// ErrInvalidStepSize is returned for a negative, zero or non-finite step size.
	ErrInvalidStepSize = errors.New("adaptive: step size must be positive and finite")
)
