package circuit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/wellplace/geom"
)

func testTech() Tech {
	return Tech{
		NWell:           WellLayer{Spacing: 0.5, OppositeSpacing: 0.5, MaxPlugDist: 25, Width: 1},
		PWell:           WellLayer{Spacing: 0.5, OppositeSpacing: 0.5, MaxPlugDist: 25, Width: 1},
		GridValueX:      1,
		GridValueY:      1,
		RowHeight:       10,
		WellTapTypeID:   -1,
		PreEndCapID:     -1,
		PostEndCapID:    -1,
		FirstRowOrientN: true,
	}
}

// TestNewRejectsDegenerateRegion checks boundary validation.
func TestNewRejectsDegenerateRegion(t *testing.T) {
	_, err := New(geom.Rect{LLX: 0, LLY: 0, URX: 0, URY: 100}, testTech())
	if !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("New(zero width) error = %v; want ErrEmptyRegion", err)
	}
	bad := testTech()
	bad.RowHeight = 0
	_, err = New(geom.Rect{URX: 10, URY: 10}, bad)
	if !errors.Is(err, ErrBadRowHeight) {
		t.Fatalf("New(zero row height) error = %v; want ErrBadRowHeight", err)
	}
}

// TestAddTypeWellInvariants exercises every load-time well check.
func TestAddTypeWellInvariants(t *testing.T) {
	ckt, err := New(geom.Rect{URX: 100, URY: 100}, testTech())
	require.NoError(t, err)

	// a valid single-region type: P-well [0,4), N-well [4,10)
	good := BlockType{
		Name: "INVX1", Width: 6, Height: 10,
		Well: &MultiWell{
			PRects: []geom.Rect{{LLX: 0, LLY: 0, URX: 6, URY: 4}},
			NRects: []geom.Rect{{LLX: 0, LLY: 4, URX: 6, URY: 10}},
		},
	}
	id, err := ckt.AddType(good)
	require.NoError(t, err)
	require.Equal(t, 1, ckt.Types[id].RegionCount())

	cases := []struct {
		name string
		t    BlockType
	}{
		{
			"MismatchedCounts",
			BlockType{Name: "BAD1", Width: 6, Height: 10, Well: &MultiWell{
				PRects: []geom.Rect{{URX: 6, URY: 4}},
				NRects: nil,
			}},
		},
		{
			"NonAbutted",
			BlockType{Name: "BAD2", Width: 6, Height: 10, Well: &MultiWell{
				PRects: []geom.Rect{{LLX: 0, LLY: 0, URX: 6, URY: 4}},
				NRects: []geom.Rect{{LLX: 0, LLY: 5, URX: 6, URY: 10}},
			}},
		},
		{
			"HeightMismatch",
			BlockType{Name: "BAD3", Width: 6, Height: 12, Well: &MultiWell{
				PRects: []geom.Rect{{LLX: 0, LLY: 0, URX: 6, URY: 4}},
				NRects: []geom.Rect{{LLX: 0, LLY: 4, URX: 6, URY: 10}},
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ckt.AddType(tc.t)
			var inv *InvariantError
			require.ErrorAs(t, err, &inv)
			require.Equal(t, tc.t.Name, inv.Location)
		})
	}
}

// TestMultiRegionStretchAllocation checks that a two-region cell gets a
// one-element stretch vector.
func TestMultiRegionStretchAllocation(t *testing.T) {
	ckt, err := New(geom.Rect{URX: 100, URY: 100}, testTech())
	require.NoError(t, err)
	id, err := ckt.AddType(BlockType{
		Name: "DFF2", Width: 10, Height: 20,
		// region 0: P below N; region 1 mirrored so the N-wells abut
		Well: &MultiWell{
			PRects: []geom.Rect{{LLX: 0, LLY: 0, URX: 10, URY: 4}, {LLX: 0, LLY: 16, URX: 10, URY: 20}},
			NRects: []geom.Rect{{LLX: 0, LLY: 4, URX: 10, URY: 10}, {LLX: 0, LLY: 10, URX: 10, URY: 16}},
		},
	})
	require.NoError(t, err)
	bid, err := ckt.AddBlock("dff_0", id, 0, 0, Unplaced)
	require.NoError(t, err)
	require.Len(t, ckt.Blocks[bid].StretchLengths, 1)
	require.Equal(t, 2, ckt.Types[id].RegionCount())
}

// TestHPWL verifies the weighted half-perimeter computation on a two-pin net.
// Blocks at (10,10) and (60,10), pins at cell origin: HPWL = 50 + 0.
func TestHPWL(t *testing.T) {
	ckt, err := New(geom.Rect{URX: 100, URY: 100}, testTech())
	require.NoError(t, err)
	tid, err := ckt.AddType(BlockType{Name: "C", Width: 30, Height: 10, Pins: []Pin{{Name: "p"}}})
	require.NoError(t, err)
	a, _ := ckt.AddBlock("a", tid, 10, 10, Unplaced)
	b, _ := ckt.AddBlock("b", tid, 60, 10, Unplaced)
	_, err = ckt.AddNet([]NetPin{{BlockID: a}, {BlockID: b}}, 1)
	require.NoError(t, err)

	require.InDelta(t, 50.0, ckt.HPWLX(), 1e-12)
	require.InDelta(t, 0.0, ckt.HPWLY(), 1e-12)
	require.InDelta(t, 50.0, ckt.HPWL(), 1e-12)

	n := &ckt.Nets[0]
	ckt.UpdateMaxMinX(n)
	require.Equal(t, 0, n.MinX)
	require.Equal(t, 1, n.MaxX)
	require.InDelta(t, 1.0, n.InvP, 1e-12)
}

// TestNetValidation checks bad pin references.
func TestNetValidation(t *testing.T) {
	ckt, err := New(geom.Rect{URX: 100, URY: 100}, testTech())
	require.NoError(t, err)
	tid, _ := ckt.AddType(BlockType{Name: "C", Width: 10, Height: 10, Pins: []Pin{{Name: "p"}}})
	a, _ := ckt.AddBlock("a", tid, 0, 0, Unplaced)

	_, err = ckt.AddNet([]NetPin{{BlockID: 99}}, 1)
	require.ErrorIs(t, err, ErrUnknownBlock)
	_, err = ckt.AddNet([]NetPin{{BlockID: a, PinID: 7}}, 1)
	require.ErrorIs(t, err, ErrUnknownPin)
	_, err = ckt.AddBlock("x", 42, 0, 0, Unplaced)
	require.ErrorIs(t, err, ErrUnknownType)
}
