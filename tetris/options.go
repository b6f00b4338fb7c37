package tetris

import (
	"context"
	"errors"
)

// Sentinel errors for legalizer construction.
var (
	// ErrNilCircuit indicates a missing circuit.
	ErrNilCircuit = errors.New("tetris: circuit must not be nil")
	// ErrBadRowHeight indicates a non-positive row height.
	ErrBadRowHeight = errors.New("tetris: row height must be positive")
)

// Options tunes the sweep.
type Options struct {
	// RowHeight overrides the technology row height when positive.
	RowHeight int
	// MaxIter caps the alternating sweeps (default 10).
	MaxIter int
	// KWidth and KHeight bias the packing order: blocks are visited by
	// LLX − KWidth·width − KHeight·height ascending (defaults 0).
	KWidth  float64
	KHeight float64
	// KLeft bounds how far left of its start a block may slide, in block
	// widths (default 1).
	KLeft float64
	// Ctx aborts between sweeps.
	Ctx context.Context
}

// DefaultOptions returns the sweep defaults.
func DefaultOptions() Options {
	return Options{MaxIter: 10, KLeft: 1}
}

func (o *Options) normalize() {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 10
	}
	if o.KLeft <= 0 {
		o.KLeft = 1
	}
}
