package netmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/wellplace/cg"
	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

// twoBlockCircuit returns a 100×100 region with one movable block at x and
// one fixed block at fx, connected by a two-pin net.
func twoBlockCircuit(t *testing.T, x, fx float64) *circuit.Circuit {
	t.Helper()
	ckt, err := circuit.New(geom.Rect{URX: 100, URY: 100}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10, Pins: []circuit.Pin{{Name: "p"}}})
	require.NoError(t, err)
	a, err := ckt.AddBlock("mov", tid, x, 10, circuit.Unplaced)
	require.NoError(t, err)
	b, err := ckt.AddBlock("fix", tid, fx, 10, circuit.Fixed)
	require.NoError(t, err)
	_, err = ckt.AddNet([]circuit.NetPin{{BlockID: a}, {BlockID: b}}, 1)
	require.NoError(t, err)
	return ckt
}

// TestB2BFixedPull solves the assembled system and checks the movable block
// lands on the fixed pin.
func TestB2BFixedPull(t *testing.T) {
	ckt := twoBlockCircuit(t, 10, 70)
	bd := NewBuilder(ckt, DefaultOptions())

	var tr cg.Triplets
	rhs := make([]float64, len(ckt.Blocks))
	bd.BuildX(&tr, rhs)

	a, err := cg.BuildCSR(len(ckt.Blocks), &tr)
	require.NoError(t, err)
	x := []float64{ckt.Blocks[0].LLX, ckt.Blocks[1].LLX}
	res, err := cg.Solve(a, rhs, x, 200, 1e-10)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.InDelta(t, 70.0, x[0], 1e-6, "movable block must move onto the fixed pin")
	require.InDelta(t, 70.0, x[1], 1e-6, "fixed block must stay put")
}

// TestModelsProduceSystems sanity-checks every model on a small movable-only
// net: the model must emit coefficients and every row sum must be
// non-negative (SPD surrogate).
func TestModelsProduceSystems(t *testing.T) {
	for _, model := range []Model{B2B, Star, HPWL, StarHPWL} {
		t.Run(model.String(), func(t *testing.T) {
			ckt, err := circuit.New(geom.Rect{URX: 100, URY: 100}, circuit.Tech{
				GridValueX: 1, GridValueY: 1, RowHeight: 10,
				WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
			})
			require.NoError(t, err)
			tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10, Pins: []circuit.Pin{{Name: "p"}}})
			ids := make([]circuit.NetPin, 0, 3)
			for i, x := range []float64{10, 40, 80} {
				id, err := ckt.AddBlock("b", tid, x, float64(10*i), circuit.Unplaced)
				require.NoError(t, err)
				ids = append(ids, circuit.NetPin{BlockID: id})
			}
			_, err = ckt.AddNet(ids, 1)
			require.NoError(t, err)

			opts := DefaultOptions()
			opts.Model = model
			bd := NewBuilder(ckt, opts)
			var tr cg.Triplets
			rhs := make([]float64, 3)
			bd.BuildX(&tr, rhs)
			require.Positive(t, tr.Len(), "model %v must emit coefficients", model)

			a, err := cg.BuildCSR(3, &tr)
			require.NoError(t, err)
			// multiply by the all-ones vector: off-diagonals cancel pin-to-pin
			// springs, leaving only the boundary/center terms (none here).
			ones := []float64{1, 1, 1}
			out := make([]float64, 3)
			a.MulVec(ones, out)
			for i, v := range out {
				require.GreaterOrEqual(t, v, -1e-9, "row %d of %v model must not be negative-sum", i, model)
			}
		})
	}
}

// TestIgnoreThreshold verifies high-fanout nets contribute nothing.
func TestIgnoreThreshold(t *testing.T) {
	ckt, err := circuit.New(geom.Rect{URX: 100, URY: 100}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 5, Height: 10, Pins: []circuit.Pin{{Name: "p"}}})
	pins := make([]circuit.NetPin, 0, 4)
	for i := 0; i < 4; i++ {
		id, _ := ckt.AddBlock("b", tid, float64(5*i+10), 10, circuit.Unplaced)
		pins = append(pins, circuit.NetPin{BlockID: id})
	}
	_, err = ckt.AddNet(pins, 1)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.IgnoreThreshold = 4 // the 4-pin net is at the threshold: skipped
	bd := NewBuilder(ckt, opts)
	var tr cg.Triplets
	rhs := make([]float64, 4)
	bd.BuildX(&tr, rhs)
	require.Zero(t, tr.Len(), "threshold-sized net must be ignored and no block is out of region")
}

// TestAnchorsPullTowardTarget checks the anchored system biases the solution.
func TestAnchorsPullTowardTarget(t *testing.T) {
	ckt := twoBlockCircuit(t, 10, 70)
	bd := NewBuilder(ckt, DefaultOptions())

	var tr cg.Triplets
	rhs := make([]float64, 2)
	bd.BuildX(&tr, rhs)
	anchor := []float64{20, 70}
	bd.AddAnchorsX(&tr, rhs, anchor, 1000) // overwhelming anchor stiffness

	a, err := cg.BuildCSR(2, &tr)
	require.NoError(t, err)
	x := []float64{10, 70}
	res, err := cg.Solve(a, rhs, x, 300, 1e-10)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.Less(t, math.Abs(x[0]-20), 5.0,
		"with a dominant anchor the solution must sit near the anchor, got %v", x[0])
}

// TestCenterWeightDefault checks the 0.03/√N default.
func TestCenterWeightDefault(t *testing.T) {
	ckt := twoBlockCircuit(t, 10, 70)
	bd := NewBuilder(ckt, DefaultOptions())
	want := 0.03 / math.Sqrt(2)
	require.InDelta(t, want, bd.Options().CenterWeight, 1e-12)
}
