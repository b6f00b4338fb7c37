package bisect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
	"github.com/katalvlaran/wellplace/gridbin"
)

func spreadCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	ckt, err := circuit.New(geom.Rect{URX: 200, URY: 200}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	return ckt
}

// TestSpreadDeclusters stacks cells into one bin and verifies all of them
// end up inside the expanded box with no two cells at the same center.
func TestSpreadDeclusters(t *testing.T) {
	ckt := spreadCircuit(t)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10})
	require.NoError(t, err)
	// 38 cells of 100 area each stacked in bin (2,2): 3800 against the 2500
	// white space of a 50×50 bin overfills it at rate 1.
	for i := 0; i < 38; i++ {
		_, err := ckt.AddBlock("c", tid, 110, 110, circuit.Unplaced)
		require.NoError(t, err)
	}
	g, err := gridbin.NewGrid(ckt, gridbin.Options{CellsPerBin: 25, FillingRate: 1, ClusterUpperSize: 64})
	require.NoError(t, err)
	g.ClearFlags()
	g.UpdateState()
	clusters := g.Clusters()
	require.NotEmpty(t, clusters)
	box := g.ExpandCluster(clusters[0])
	require.Len(t, box.Cells, 38)

	Spread(ckt, g, box)

	seen := map[[2]float64]bool{}
	for _, id := range box.Cells {
		b := &ckt.Blocks[id]
		require.GreaterOrEqual(t, b.X(), float64(box.Rect.LLX), "cell center left of box")
		require.LessOrEqual(t, b.X(), float64(box.Rect.URX), "cell center right of box")
		require.GreaterOrEqual(t, b.Y(), float64(box.Rect.LLY))
		require.LessOrEqual(t, b.Y(), float64(box.Rect.URY))
		key := [2]float64{b.X(), b.Y()}
		require.False(t, seen[key], "two cells share center %v after spreading", key)
		seen[key] = true
	}
}

// TestSpreadAvoidsMacro places the cluster over a fixed macro and verifies
// no cell center lands inside the macro footprint.
func TestSpreadAvoidsMacro(t *testing.T) {
	ckt := spreadCircuit(t)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10})
	require.NoError(t, err)
	mid, err := ckt.AddType(circuit.BlockType{Name: "M", Width: 30, Height: 30})
	require.NoError(t, err)
	_, err = ckt.AddBlock("macro", mid, 110, 110, circuit.Fixed)
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		_, err := ckt.AddBlock("c", tid, 115, 115, circuit.Unplaced)
		require.NoError(t, err)
	}
	g, err := gridbin.NewGrid(ckt, gridbin.Options{CellsPerBin: 25, FillingRate: 1, ClusterUpperSize: 64})
	require.NoError(t, err)
	g.ClearFlags()
	g.UpdateState()
	clusters := g.Clusters()
	require.NotEmpty(t, clusters)
	box := g.ExpandCluster(clusters[0])

	Spread(ckt, g, box)

	macro := geom.Rect{LLX: 110, LLY: 110, URX: 140, URY: 140}
	for _, id := range box.Cells {
		b := &ckt.Blocks[id]
		inside := b.X() > float64(macro.LLX) && b.X() < float64(macro.URX) &&
			b.Y() > float64(macro.LLY) && b.Y() < float64(macro.URY)
		require.False(t, inside, "cell %d center (%v, %v) inside macro", id, b.X(), b.Y())
	}
}
