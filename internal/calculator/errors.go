package calculator

import "errors"

var (
	// ErrZeroVariance means every considered value is identical, so scaling
	// and correlation are undefined.
	ErrZeroVariance = errors.New("zero variance")
	// ErrInsufficientData means there are too few non-missing observations.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrLengthMismatch means two series that must be index-aligned are not.
	ErrLengthMismatch = errors.New("series length mismatch")
)
