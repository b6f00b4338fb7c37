package netmodel

import (
	"context"
	"math"

	"github.com/katalvlaran/wellplace/circuit"
)

// Model selects the HPWL linearization.
type Model int

const (
	// B2B is the bound-to-bound model used by the SimPL loop.
	B2B Model = iota
	// Star connects the driver pin to every load.
	Star
	// HPWL places a single spring between the extreme pins.
	HPWL
	// StarHPWL is the star model rescaled by pin span over net span.
	StarHPWL
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case B2B:
		return "b2b"
	case Star:
		return "star"
	case HPWL:
		return "hpwl"
	case StarHPWL:
		return "star-hpwl"
	}
	return "unknown"
}

// Options configures a Builder.
//
//   - WidthEpsilon / HeightEpsilon: dividend guards per axis; 0 means
//     average movable cell dimension / 100.
//   - IgnoreThreshold: nets with at least this many pins are skipped (default 100).
//   - CenterWeight: stiffness of the boundary spring; 0 means 0.03/√N.
//   - BaseFactor / AdjustFactor / DecayFactor: the distance-decay adjustment
//     of the star models, weight·(base + adjust·(1 − e^(−d/decayLen))) with
//     decayLen = DecayFactor · average cell height.
//   - NumThreads: workers for the parallel pin-extreme refresh and the
//     star-HPWL pair sweep (default 1).
type Options struct {
	Model           Model
	WidthEpsilon    float64
	HeightEpsilon   float64
	IgnoreThreshold int
	CenterWeight    float64
	BaseFactor      float64
	AdjustFactor    float64
	DecayFactor     float64
	NumThreads      int
	Ctx             context.Context
}

// DefaultOptions returns the options the SimPL driver uses.
func DefaultOptions() Options {
	return Options{
		Model:           B2B,
		IgnoreThreshold: 100,
		BaseFactor:      0,
		AdjustFactor:    1.5,
		DecayFactor:     2,
		NumThreads:      1,
	}
}

// normalize fills zero values against the circuit.
func (o *Options) normalize(ckt *circuit.Circuit) {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.IgnoreThreshold <= 0 {
		o.IgnoreThreshold = 100
	}
	if o.WidthEpsilon <= 0 {
		o.WidthEpsilon = ckt.AveMovBlkWidth() / 100
		if o.WidthEpsilon <= 0 {
			o.WidthEpsilon = 1e-3
		}
	}
	if o.HeightEpsilon <= 0 {
		o.HeightEpsilon = ckt.AveMovBlkHeight() / 100
		if o.HeightEpsilon <= 0 {
			o.HeightEpsilon = 1e-3
		}
	}
	if o.CenterWeight <= 0 && len(ckt.Blocks) > 0 {
		o.CenterWeight = 0.03 / math.Sqrt(float64(len(ckt.Blocks)))
	}
	if o.NumThreads <= 0 {
		o.NumThreads = 1
	}
	if o.BaseFactor <= 0 && o.AdjustFactor <= 0 {
		o.AdjustFactor = 1.5
	}
	if o.DecayFactor <= 0 {
		o.DecayFactor = 2
	}
}

// pairEdge is one driver-load occurrence of a block pair in some net,
// cached once for the star-HPWL sweep.
type pairEdge struct {
	netID  int
	driver int // pin index inside the net
	load   int
}

// pairTerm receives the independent contribution of one driver-load pair;
// pairs are distinct records, so the parallel sweep writes without locks.
type pairTerm struct {
	e00, e11, e01 float64
	b0, b1        float64
}
