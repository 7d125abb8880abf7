package control

import "errors"

var (
	// ErrInvalidArgument is returned for missing required input, before the
	// compositor context is acquired
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownSeat is returned when a seat name is not in the current snapshot
	ErrUnknownSeat = errors.New("unknown seat")

	// ErrUnknownSurface is returned when a surface id is not in the current snapshot
	ErrUnknownSurface = errors.New("unknown surface")

	// ErrExclusivityViolation is returned when pointer or touch focus would be
	// given to more than one surface
	ErrExclusivityViolation = errors.New("pointer or touch focus cannot be held by multiple surfaces")

	// ErrNoOp is returned when an atomic focus transfer names no known surface
	ErrNoOp = errors.New("no known surface in focus transfer")
)
