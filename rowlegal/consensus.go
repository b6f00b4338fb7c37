package rowlegal

import (
	"errors"
	"math"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/rowpack"
)

// Sentinel errors for the consensus pass.
var (
	// ErrNilCircuit indicates a missing circuit.
	ErrNilCircuit = errors.New("rowlegal: circuit must not be nil")
)

// Options tunes the consensus pass.
type Options struct {
	// MaxConsIter caps consensus iterations (default 10).
	MaxConsIter int
	// Lambda is the anchor weight pulling a region toward the cell's mean
	// sub-location (default 1).
	Lambda float64
	// Epsilon is the discrepancy convergence threshold in grid units
	// (default 0.1).
	Epsilon float64
}

// DefaultOptions returns the consensus defaults.
func DefaultOptions() Options {
	return Options{MaxConsIter: 10, Lambda: 1, Epsilon: 0.1}
}

func (o *Options) normalize() {
	if o.MaxConsIter <= 0 {
		o.MaxConsIter = 10
	}
	if o.Lambda <= 0 {
		o.Lambda = 1
	}
	if o.Epsilon <= 0 {
		o.Epsilon = 0.1
	}
}

// Result reports the outcome of a consensus run.
type Result struct {
	Iterations int
	Residual   float64 // final maximum per-cell discrepancy
	Converged  bool
}

// LegalizeSegment solves one segment in isolation and writes member block
// x-locations. Used for the first greedy pass and after service-cell
// insertion.
func LegalizeSegment(ckt *circuit.Circuit, seg *rowpack.RowSegment) error {
	if ckt == nil {
		return ErrNilCircuit
	}
	vars := segmentVars(ckt, seg, nil, 0)
	MinDisplacement(vars, seg.Lo, seg.Hi)
	for i, br := range seg.Regions {
		ckt.Blocks[br.BlockID].LLX = vars[i].Solution
	}
	return nil
}

// LegalizeRows runs LegalizeSegment over every segment of every row.
func LegalizeRows(ckt *circuit.Circuit, rows []rowpack.GriddedRow) error {
	if ckt == nil {
		return ErrNilCircuit
	}
	for r := range rows {
		for s := range rows[r].Segments {
			if err := LegalizeSegment(ckt, &rows[r].Segments[s]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reorder is the consensus pass over one stripe's rows. Each iteration
// anchors every region of a multi-region cell at the mean of the cell's
// sub-locations, re-solves every segment, and measures the largest
// disagreement between a sub-location and its mean. The pass stops on
// convergence, stalled progress, or oscillation of the discrepancy series,
// then writes the averaged locations back and re-solves once for overlap.
func Reorder(ckt *circuit.Circuit, rows []rowpack.GriddedRow, opts Options) (Result, error) {
	if ckt == nil {
		return Result{}, ErrNilCircuit
	}
	opts.normalize()

	// sub-locations, one per (block, region) pair, seeded from current x
	subs := map[int][]float64{}
	for r := range rows {
		for _, br := range rows[r].Regions {
			if _, ok := subs[br.BlockID]; !ok {
				rc := ckt.Types[ckt.Blocks[br.BlockID].TypeID].Well.RegionCount()
				v := make([]float64, rc)
				for k := range v {
					v[k] = ckt.Blocks[br.BlockID].LLX
				}
				subs[br.BlockID] = v
			}
		}
	}

	means := func(id int) float64 {
		v := subs[id]
		sum := 0.0
		for _, x := range v {
			sum += x
		}
		return sum / float64(len(v))
	}

	res := Result{Residual: math.Inf(1)}
	var history []float64
	// the anchor weight doubles every iteration so sub-locations pinned by a
	// full segment still drag their siblings to the common mean
	lambda := opts.Lambda
	for it := 0; it < opts.MaxConsIter; it++ {
		for r := range rows {
			for s := range rows[r].Segments {
				seg := &rows[r].Segments[s]
				vars := segmentVars(ckt, seg, subs, lambda)
				MinDisplacement(vars, seg.Lo, seg.Hi)
				for i, br := range seg.Regions {
					if v, ok := subs[br.BlockID]; ok && len(v) > 1 {
						v[br.Region] = vars[i].Solution
					} else if ok {
						v[0] = vars[i].Solution
					}
				}
			}
		}
		worst := 0.0
		for id, v := range subs {
			if len(v) < 2 {
				continue
			}
			m := means(id)
			for _, x := range v {
				worst = math.Max(worst, math.Abs(x-m))
			}
		}
		res.Iterations = it + 1
		res.Residual = worst
		history = append(history, worst)
		if worst < opts.Epsilon {
			res.Converged = true
			break
		}
		if stalled(history) {
			break
		}
		lambda *= 2
	}

	// adopt the averaged location and restore per-segment non-overlap
	for id := range subs {
		ckt.Blocks[id].LLX = means(id)
	}
	for r := range rows {
		for s := range rows[r].Segments {
			seg := &rows[r].Segments[s]
			vars := make([]Var, len(seg.Regions))
			for i, br := range seg.Regions {
				vars[i] = Var{
					Width:  ckt.Blocks[br.BlockID].W,
					InitX:  ckt.Blocks[br.BlockID].LLX,
					Weight: 1,
				}
			}
			MinDisplacement(vars, seg.Lo, seg.Hi)
			for i, br := range seg.Regions {
				ckt.Blocks[br.BlockID].LLX = vars[i].Solution
			}
		}
	}
	return res, nil
}

// stalled reports no progress or strict oscillation over the last samples.
func stalled(history []float64) bool {
	n := len(history)
	if n >= 2 && history[n-1] >= history[n-2] {
		return true
	}
	if n >= 4 {
		up1 := history[n-1] > history[n-2]
		up2 := history[n-2] > history[n-3]
		up3 := history[n-3] > history[n-4]
		if up1 != up2 && up2 != up3 {
			return true
		}
	}
	return false
}

// segmentVars builds the solver input for one segment. When subs is non-nil
// multi-region cells get an anchor at their mean sub-location with weight
// lambda.
func segmentVars(ckt *circuit.Circuit, seg *rowpack.RowSegment, subs map[int][]float64, lambda float64) []Var {
	vars := make([]Var, len(seg.Regions))
	for i, br := range seg.Regions {
		vars[i] = Var{
			Width:  ckt.Blocks[br.BlockID].W,
			InitX:  seg.InitX[i],
			Weight: 1,
		}
		if subs != nil {
			if v, ok := subs[br.BlockID]; ok && len(v) > 1 {
				sum := 0.0
				for _, x := range v {
					sum += x
				}
				vars[i].AnchorX = sum / float64(len(v))
				vars[i].AnchorWeight = lambda
			}
		}
	}
	return vars
}
