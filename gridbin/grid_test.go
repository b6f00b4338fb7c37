package gridbin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

// gridCircuit builds a 400×400 region with n movable 10×10 cells stacked at
// the given location.
func gridCircuit(t *testing.T, n int, x, y float64) *circuit.Circuit {
	t.Helper()
	ckt, err := circuit.New(geom.Rect{URX: 400, URY: 400}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	tid, err := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		_, err := ckt.AddBlock("c", tid, x, y, circuit.Unplaced)
		require.NoError(t, err)
	}
	return ckt
}

// TestNewGridSizing checks the bin side formula √(K·avgArea/rate).
func TestNewGridSizing(t *testing.T) {
	ckt := gridCircuit(t, 16, 0, 0)
	g, err := NewGrid(ckt, Options{CellsPerBin: 25, FillingRate: 1, ClusterUpperSize: 64})
	require.NoError(t, err)
	// √(25·100/1) = 50
	require.Equal(t, 50, g.BinW)
	require.Equal(t, 8, g.CntX)
	require.Equal(t, 8, g.CntY)
	// whole-region query equals total area (no macros)
	ws := g.WhiteSpace(Index{0, 0}, Index{g.CntX - 1, g.CntY - 1})
	require.Equal(t, int64(400*400), ws)
}

// TestNewGridRejectsBadRate covers option validation.
func TestNewGridRejectsBadRate(t *testing.T) {
	ckt := gridCircuit(t, 4, 0, 0)
	_, err := NewGrid(ckt, Options{FillingRate: 1.5})
	require.ErrorIs(t, err, ErrBadFillingRate)
	_, err = NewGrid(ckt, Options{FillingRate: 0})
	require.ErrorIs(t, err, ErrBadFillingRate)
}

// TestMacroWhiteSpace checks macro subtraction and the all-terminal flag.
func TestMacroWhiteSpace(t *testing.T) {
	ckt := gridCircuit(t, 16, 0, 0)
	big, err := ckt.AddType(circuit.BlockType{Name: "MACRO", Width: 50, Height: 50})
	require.NoError(t, err)
	_, err = ckt.AddBlock("m", big, 50, 50, circuit.Fixed)
	require.NoError(t, err)

	g, err := NewGrid(ckt, Options{CellsPerBin: 25, FillingRate: 1, ClusterUpperSize: 64})
	require.NoError(t, err)
	// macro covers bin (1,1) fully (bins are 50×50)
	bin := &g.Bins[1][1]
	require.True(t, bin.AllTerminal)
	require.Equal(t, int64(0), bin.WhiteSpace)
	require.Len(t, bin.Macros, 1)
	// neighbouring bin untouched
	require.Equal(t, int64(2500), g.Bins[0][1].WhiteSpace)
	// LUT sees the loss
	ws := g.WhiteSpace(Index{0, 0}, Index{g.CntX - 1, g.CntY - 1})
	require.Equal(t, int64(400*400-2500), ws)
}

// TestUpdateStateOverfill stacks cells into one bin and checks the overfill
// cluster machinery end to end.
func TestUpdateStateOverfill(t *testing.T) {
	// 30 cells of 10×10 stacked in bin (2,2): 3000 area against 2500 white
	// space trips the overfill flag
	ckt := gridCircuit(t, 30, 110, 110)
	g, err := NewGrid(ckt, Options{CellsPerBin: 25, FillingRate: 1, ClusterUpperSize: 64})
	require.NoError(t, err)

	g.ClearFlags()
	g.UpdateState()
	// 30 cells × 100 = 3000 > 2500 white space of bin (2,2)
	idx := g.BinAt(115, 115)
	require.Equal(t, Index{2, 2}, idx)
	require.True(t, g.Bins[2][2].OverFill)

	clusters := g.Clusters()
	require.Len(t, clusters, 1)
	require.InDelta(t, 3000.0, clusters[0].CellArea, 1e-9)

	box := g.ExpandCluster(clusters[0])
	require.Len(t, box.Cells, 30)
	require.GreaterOrEqual(t, float64(box.WhiteSpace), box.CellArea)
	require.True(t, g.Bins[2][2].Placed)

	// a second pass must not re-cluster placed bins
	g.UpdateState()
	require.Empty(t, g.Clusters())
}

// TestClustersAdjacency checks that two overfilled bins touching diagonally
// merge into one cluster.
func TestClustersAdjacency(t *testing.T) {
	ckt := gridCircuit(t, 30, 110, 110)
	tid := ckt.Blocks[0].TypeID
	for i := 0; i < 30; i++ {
		_, err := ckt.AddBlock("d", tid, 160, 160, circuit.Unplaced)
		require.NoError(t, err)
	}
	g, err := NewGrid(ckt, Options{CellsPerBin: 25, FillingRate: 1, ClusterUpperSize: 64})
	require.NoError(t, err)
	g.ClearFlags()
	g.UpdateState()
	require.True(t, g.Bins[2][2].OverFill)
	require.True(t, g.Bins[3][3].OverFill)
	clusters := g.Clusters()
	require.Len(t, clusters, 1, "diagonal bins are 8-adjacent and must merge")
	require.Len(t, clusters[0].Bins, 2)
}

func BenchmarkUpdateState(b *testing.B) {
	ckt, _ := circuit.New(geom.Rect{URX: 4000, URY: 4000}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10})
	for i := 0; i < 5000; i++ {
		_, _ = ckt.AddBlock("c", tid, float64((i*37)%3900), float64((i*53)%3900), circuit.Unplaced)
	}
	g, _ := NewGrid(ckt, DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.UpdateState()
	}
}
