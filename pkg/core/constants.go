package core

import "errors"

// Errors
var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrOrderExists      = errors.New("order exists")

	// ErrFillExceedsRemaining is the engine's internal-consistency failure.
	// Matching computes every fill as a minimum of the two remaining
	// quantities, so seeing this error means the book state is corrupt and
	// the caller should stop trading on it.
	ErrFillExceedsRemaining = errors.New("fill exceeds remaining quantity")
)
