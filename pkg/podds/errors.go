package podds

import "errors"

var (
	// ErrInvalidInput is returned when a required field is absent or out of range
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOdds marks a quoted price that cannot be converted to a probability (odds <= 1.0)
	ErrInvalidOdds = errors.New("invalid odds")

	// ErrInvalidConfig is returned by Config.Validate
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInsufficientData is attached to outputs that were produced from defaults rather than data
	ErrInsufficientData = errors.New("insufficient data")
)
