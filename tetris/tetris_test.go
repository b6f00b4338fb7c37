package tetris

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

func newCircuit(t *testing.T, w, h, rowHeight int) *circuit.Circuit {
	t.Helper()
	ckt, err := circuit.New(geom.Rect{URX: w, URY: h}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: rowHeight,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	return ckt
}

// requireLegal asserts row alignment and pairwise non-overlap of movable
// blocks — the two post-legalization invariants.
func requireLegal(t *testing.T, ckt *circuit.Circuit, rowHeight int) {
	t.Helper()
	for i := range ckt.Blocks {
		b := &ckt.Blocks[i]
		if !b.IsMovable() {
			continue
		}
		require.Equal(t, 0, (int(b.LLY)-ckt.Region.LLY)%rowHeight,
			"block %d LLY %v not on a row origin", i, b.LLY)
		require.InDelta(t, b.LLY, float64(int(b.LLY)), 0, "block %d LLY not integral", i)
		for j := i + 1; j < len(ckt.Blocks); j++ {
			o := &ckt.Blocks[j]
			if !o.IsMovable() {
				continue
			}
			require.False(t, b.Overlaps(o), "blocks %d and %d overlap: %v/%v", i, j, b, o)
		}
	}
}

// TestAbutTwoBlocks checks row snapping: two 30×30 blocks on
// one net end up abutted on row 0.
func TestAbutTwoBlocks(t *testing.T) {
	ckt := newCircuit(t, 100, 100, 100)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 30, Height: 30, Pins: []circuit.Pin{{Name: "p"}}})
	require.NoError(t, err)
	a, _ := ckt.AddBlock("a", tid, 10, 10, circuit.Unplaced)
	b, _ := ckt.AddBlock("b", tid, 35, 10, circuit.Unplaced)
	_, err = ckt.AddNet([]circuit.NetPin{{BlockID: a}, {BlockID: b}}, 1)
	require.NoError(t, err)

	l, err := New(ckt, DefaultOptions())
	require.NoError(t, err)
	ok, err := l.Legalize()
	require.NoError(t, err)
	require.True(t, ok)
	requireLegal(t, ckt, 100)
	require.Equal(t, ckt.Blocks[a].URX(), ckt.Blocks[b].LLX, "blocks must abut")
}

// TestTileStackedCells checks overlap removal: four stacked 50×50 cells tile along
// the single row.
func TestTileStackedCells(t *testing.T) {
	ckt := newCircuit(t, 200, 100, 100)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 50, Height: 50})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := ckt.AddBlock("c", tid, 0, 0, circuit.Unplaced)
		require.NoError(t, err)
	}
	l, err := New(ckt, DefaultOptions())
	require.NoError(t, err)
	ok, err := l.Legalize()
	require.NoError(t, err)
	require.True(t, ok)
	requireLegal(t, ckt, 100)
	for i := 0; i < 4; i++ {
		require.InDelta(t, float64(50*i), ckt.Blocks[i].LLX, 0, "cell %d misplaced", i)
		require.InDelta(t, 0.0, ckt.Blocks[i].LLY, 0)
	}
	require.InDelta(t, 0.0, ckt.HPWL(), 1e-12, "no nets: HPWL stays zero")
}

// TestMacroAvoidance checks blockage handling: a fixed macro splits rows into two
// white-space segments; no movable cell may land inside the macro.
func TestMacroAvoidance(t *testing.T) {
	ckt := newCircuit(t, 300, 200, 50)
	mid, err := ckt.AddType(circuit.BlockType{Name: "M", Width: 100, Height: 100})
	require.NoError(t, err)
	_, err = ckt.AddBlock("macro", mid, 100, 0, circuit.Fixed)
	require.NoError(t, err)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 50, Height: 50})
	require.NoError(t, err)
	for _, x := range []float64{60, 80, 160, 180} {
		_, err := ckt.AddBlock("c", tid, x, 25, circuit.Unplaced)
		require.NoError(t, err)
	}

	l, err := New(ckt, DefaultOptions())
	require.NoError(t, err)
	ok, err := l.Legalize()
	require.NoError(t, err)
	require.True(t, ok)
	requireLegal(t, ckt, 50)

	macro := &ckt.Blocks[0]
	for i := 1; i < len(ckt.Blocks); i++ {
		require.False(t, ckt.Blocks[i].Overlaps(macro),
			"block %d overlaps the macro at (%v, %v)", i, ckt.Blocks[i].LLX, ckt.Blocks[i].LLY)
	}
}

// TestNarrowSegmentsDropped checks white space narrower than the smallest
// movable block is discarded up front.
func TestNarrowSegmentsDropped(t *testing.T) {
	ckt := newCircuit(t, 100, 50, 50)
	mid, _ := ckt.AddType(circuit.BlockType{Name: "M", Width: 50, Height: 50})
	// macro leaves [0,20) and [70,100): the left sliver is too narrow for a
	// 30-wide cell
	_, err := ckt.AddBlock("macro", mid, 20, 0, circuit.Fixed)
	require.NoError(t, err)
	tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 30, Height: 50})
	_, err = ckt.AddBlock("c", tid, 0, 0, circuit.Unplaced)
	require.NoError(t, err)

	l, err := New(ckt, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, l.whiteSpace[0], 1)
	require.Equal(t, geom.Seg{Lo: 70, Hi: 100}, l.whiteSpace[0][0])

	ok, err := l.Legalize()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 70.0, ckt.Blocks[1].LLX, 0)
}

// TestInfeasibleReportsFalse checks best-effort behaviour when cells cannot
// all fit.
func TestInfeasibleReportsFalse(t *testing.T) {
	ckt := newCircuit(t, 60, 50, 50)
	tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 50, Height: 50})
	for i := 0; i < 2; i++ {
		_, err := ckt.AddBlock("c", tid, 0, 0, circuit.Unplaced)
		require.NoError(t, err)
	}
	opts := DefaultOptions()
	opts.MaxIter = 3
	l, err := New(ckt, opts)
	require.NoError(t, err)
	ok, err := l.Legalize()
	require.NoError(t, err)
	require.False(t, ok, "two 50-wide cells cannot share a 60-wide region")
}
