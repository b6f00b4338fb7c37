package rowpack

import "errors"

// Sentinel errors for packing.
var (
	// ErrNilCircuit indicates a missing circuit.
	ErrNilCircuit = errors.New("rowpack: circuit must not be nil")
	// ErrNilStripe indicates a missing stripe.
	ErrNilStripe = errors.New("rowpack: stripe must not be nil")
	// ErrNoWellInfo indicates a movable block's type lacks well geometry.
	ErrNoWellInfo = errors.New("rowpack: block type has no well geometry")
	// ErrBlockWiderThanStripe indicates a block that can never fit any row
	// of its assigned stripe.
	ErrBlockWiderThanStripe = errors.New("rowpack: block wider than its stripe")
)

// BlockRegion pairs a block with one of its well regions.
type BlockRegion struct {
	BlockID int
	Region  int
}

// RowSegment is a free x-interval of a gridded row, the 1-D legalization
// domain. InitX snapshots each member's target x at segment build time.
type RowSegment struct {
	Lo, Hi  int
	Regions []BlockRegion
	InitX   []float64
}

// Width returns Hi − Lo.
func (s *RowSegment) Width() int { return s.Hi - s.Lo }

// GriddedRow is one variable-height row of a stripe.
type GriddedRow struct {
	Lx, Ly int
	Width  int

	// PHeight and NHeight are the row's well heights; the row height is
	// their sum. Which well sits at the bottom follows OrientN.
	PHeight int
	NHeight int
	OrientN bool

	UsedSize int
	Regions  []BlockRegion
	Segments []RowSegment
}

// Height returns the row height.
func (r *GriddedRow) Height() int { return r.PHeight + r.NHeight }

// URY returns the row's top edge.
func (r *GriddedRow) URY() int { return r.Ly + r.Height() }

// PNEdge returns the y-offset of the P/N junction above the row origin:
// the P-well sits below it in an N row, above it in an FS row.
func (r *GriddedRow) PNEdge() int {
	if r.OrientN {
		return r.PHeight
	}
	return r.NHeight
}

// Options tunes the packer.
type Options struct {
	// MaxIter caps direction-alternating retries (default 10).
	MaxIter int
	// TapPHeight and TapNHeight floor every row's well heights so a well-tap
	// cell always fits (0 when taps are disabled).
	TapPHeight int
	TapNHeight int
	// FirstRowOrientN sets the orientation of the bottom row.
	FirstRowOrientN bool
}

// DefaultOptions returns the packer defaults.
func DefaultOptions() Options {
	return Options{MaxIter: 10, FirstRowOrientN: true}
}

func (o *Options) normalize() {
	if o.MaxIter <= 0 {
		o.MaxIter = 10
	}
}
