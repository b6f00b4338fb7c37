package observe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
	"github.com/katalvlaran/wellplace/rowpack"
)

// TestWriteBlockTable checks the 8-column patch format.
func TestWriteBlockTable(t *testing.T) {
	ckt, err := circuit.New(geom.Rect{URX: 100, URY: 100}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 20, Height: 10})
	_, err = ckt.AddBlock("c", tid, 5, 30, circuit.Unplaced)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteBlockTable(&sb, ckt))
	require.Equal(t, "5\t25\t25\t5\t30\t30\t40\t40\n", sb.String())
}

// TestWriteWellTable splits each row at its P/N edge into the two well files.
func TestWriteWellTable(t *testing.T) {
	rows := []rowpack.GriddedRow{
		{Lx: 0, Ly: 0, Width: 50, PHeight: 4, NHeight: 6, OrientN: true},
		{Lx: 0, Ly: 10, Width: 50, PHeight: 4, NHeight: 6, OrientN: false},
	}
	var pw, nw strings.Builder
	require.NoError(t, WriteWellTable(&pw, &nw, rows))
	// row 0 (N): P below edge 4; row 1 (FS): P above edge 16
	require.Equal(t,
		"0\t50\t50\t0\t0\t0\t4\t4\n0\t50\t50\t0\t16\t16\t20\t20\n",
		pw.String())
	require.Equal(t,
		"0\t50\t50\t0\t4\t4\t10\t10\n0\t50\t50\t0\t10\t10\t16\t16\n",
		nw.String())
}

// TestWriteDisplacement checks the quiver rows.
func TestWriteDisplacement(t *testing.T) {
	ckt, err := circuit.New(geom.Rect{URX: 100, URY: 100}, circuit.Tech{
		GridValueX: 1, GridValueY: 1, RowHeight: 10,
		WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
	})
	require.NoError(t, err)
	tid, _ := ckt.AddType(circuit.BlockType{Name: "C", Width: 10, Height: 10})
	id, _ := ckt.AddBlock("c", tid, 30, 40, circuit.Unplaced)
	before := []float64{10}
	beforeY := []float64{20}
	_ = id

	var sb strings.Builder
	require.NoError(t, WriteDisplacement(&sb, ckt, before, beforeY))
	require.Equal(t, "10\t20\t20\t20\n", sb.String())
}
