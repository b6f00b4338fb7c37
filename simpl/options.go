package simpl

import (
	"context"
	"errors"

	"github.com/katalvlaran/wellplace/gridbin"
	"github.com/katalvlaran/wellplace/netmodel"
)

// Convergence selects the stopping rule of the outer loop.
type Convergence int

const (
	// ConvergeSimPL stops when the lb/ub gap shrinks to 10% of the gap at
	// the tenth iteration, or to 25% with a flat upper-bound series.
	ConvergeSimPL Convergence = iota
	// ConvergePolar stops when ub/lb − 1 drops below PolarCriterion.
	ConvergePolar
)

// Sentinel errors for driver construction.
var (
	// ErrNilCircuit indicates a missing circuit.
	ErrNilCircuit = errors.New("simpl: circuit must not be nil")
)

// Options tunes the global-placement loop. Zero values select the defaults
// listed per field.
type Options struct {
	// Net model configuration (model choice, epsilons, threshold, threads).
	Net netmodel.Options
	// Grid-bin configuration (cells per bin, target density, cluster cap).
	Grid gridbin.Options

	// MaxIter caps outer iterations (default 100).
	MaxIter int
	// B2BUpdateMaxIter caps net-model rebuilds per quadratic placement (default 50).
	B2BUpdateMaxIter int
	// CGMaxIter caps conjugate-gradient steps per solve (default 100).
	CGMaxIter int
	// CGTolerance is the relative residual target of each solve (default 1e-5).
	CGTolerance float64
	// CGStopCriterion ends the rebuild loop once the wirelength series
	// flattens to this relative tolerance over a window of 3 (default 1e-3).
	CGStopCriterion float64

	// Criterion selects the stopping rule (default ConvergeSimPL).
	Criterion Convergence
	// SimPLCriterion is the flatness tolerance of the upper-bound series
	// used by the 25%-gap branch (default 0.01).
	SimPLCriterion float64
	// PolarCriterion is the ub/lb ratio tolerance (default 0.08).
	PolarCriterion float64

	// AlphaInit is the anchor stiffness of the first anchored iteration
	// (default 0.002); AlphaGrowth multiplies it every iteration (default 1.2).
	AlphaInit   float64
	AlphaGrowth float64

	// Seed drives the random initial spread (default 1).
	Seed int64
	// NumThreads splits the axis work onto two goroutines when ≥ 2 (default 1).
	NumThreads int

	// Ctx aborts placement between the lower-bound and upper-bound phases.
	Ctx context.Context

	// Observer, when set, receives the bound pair after every outer
	// iteration. The core itself does no logging or file I/O.
	Observer Observer
}

// Observer receives per-iteration progress of the outer loop.
type Observer interface {
	OnIteration(k int, lowerBound, upperBound float64)
}

// DefaultOptions returns the driver defaults.
func DefaultOptions() Options {
	return Options{
		Net:              netmodel.DefaultOptions(),
		Grid:             gridbin.DefaultOptions(),
		MaxIter:          100,
		B2BUpdateMaxIter: 50,
		CGMaxIter:        100,
		CGTolerance:      1e-5,
		CGStopCriterion:  1e-3,
		SimPLCriterion:   0.01,
		PolarCriterion:   0.08,
		AlphaInit:        0.002,
		AlphaGrowth:      1.2,
		Seed:             1,
		NumThreads:       1,
	}
}

func (o *Options) normalize() {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	if o.B2BUpdateMaxIter <= 0 {
		o.B2BUpdateMaxIter = 50
	}
	if o.CGMaxIter <= 0 {
		o.CGMaxIter = 100
	}
	if o.CGTolerance <= 0 {
		o.CGTolerance = 1e-5
	}
	if o.CGStopCriterion <= 0 {
		o.CGStopCriterion = 1e-3
	}
	if o.SimPLCriterion <= 0 {
		o.SimPLCriterion = 0.01
	}
	if o.PolarCriterion <= 0 {
		o.PolarCriterion = 0.08
	}
	if o.AlphaInit <= 0 {
		o.AlphaInit = 0.002
	}
	if o.AlphaGrowth <= 1 {
		o.AlphaGrowth = 1.2
	}
	if o.Seed == 0 {
		o.Seed = 1
	}
	if o.NumThreads <= 0 {
		o.NumThreads = 1
	}
	if o.Net.NumThreads <= 0 {
		o.Net.NumThreads = o.NumThreads
	}
}

// Result summarizes a placement run.
type Result struct {
	// LowerBound and UpperBound hold the per-iteration wirelength series.
	LowerBound []float64
	UpperBound []float64
	// Iterations is the number of completed outer iterations.
	Iterations int
	// Converged is false when MaxIter ran out or the context was cancelled.
	Converged bool
	// HPWL is the wirelength of the final (upper-bound) configuration.
	HPWL float64
}
