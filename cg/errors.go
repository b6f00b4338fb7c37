package cg

import "errors"

// Sentinel errors for system assembly.
var (
	// ErrDimensionMismatch indicates b or the guess vector disagrees with the matrix order.
	ErrDimensionMismatch = errors.New("cg: vector length does not match matrix order")
	// ErrIndexOutOfRange indicates a triplet addresses a row or column outside the matrix.
	ErrIndexOutOfRange = errors.New("cg: triplet index out of range")
)
