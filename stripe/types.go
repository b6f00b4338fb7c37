package stripe

import (
	"errors"

	"github.com/katalvlaran/wellplace/geom"
)

// Mode selects the rightmost-column policy.
type Mode int

const (
	// Strict trims the last column to the uniform stripe width.
	Strict Mode = iota
	// Scavenge extends the last column to the region's right boundary.
	Scavenge
)

// Sentinel errors for partitioning.
var (
	// ErrNilCircuit indicates a missing circuit.
	ErrNilCircuit = errors.New("stripe: circuit must not be nil")
	// ErrNoWellRules indicates the technology lacks a positive max plug distance.
	ErrNoWellRules = errors.New("stripe: technology max plug distance must be positive")
	// ErrColumnTooNarrow indicates well spacing consumes a whole column.
	ErrColumnTooNarrow = errors.New("stripe: well spacing leaves no usable column width")
	// ErrUnassignedBlock indicates a movable block matched no stripe.
	ErrUnassignedBlock = errors.New("stripe: no stripe found for movable block")
)

// Stripe is one vertical band of contiguous rows sharing a free span.
type Stripe struct {
	Lx, Ly        int
	Width, Height int

	// Blocks holds the ids of movable blocks assigned to this stripe.
	Blocks []int

	// MaxBlkPerRow caps how many minimum-width cells one gridded row holds.
	MaxBlkPerRow int
}

// URX returns the stripe's right edge.
func (s *Stripe) URX() int { return s.Lx + s.Width }

// URY returns the stripe's top edge.
func (s *Stripe) URY() int { return s.Ly + s.Height }

// Rect returns the stripe bounds.
func (s *Stripe) Rect() geom.Rect {
	return geom.Rect{LLX: s.Lx, LLY: s.Ly, URX: s.URX(), URY: s.URY()}
}

// Column is one vertical slot of uniform width holding stripes.
type Column struct {
	Lx    int
	Width int

	// WhiteSpace[r] is the free x-span of row r inside the column.
	WhiteSpace [][]geom.Seg
	Stripes    []Stripe
}

// Partition is the result of space partitioning.
type Partition struct {
	Columns []Column

	// WellSpacing and MaxUnplugLength are the well rules in grid units.
	WellSpacing     int
	MaxUnplugLength int

	RowHeight int
	NumRows   int
}

// Options tunes partitioning.
type Options struct {
	// Mode selects the rightmost-column policy (default Strict).
	Mode Mode
	// MaxRowWidth overrides the default stripe width 2·maxUnplugLength when
	// positive (grid units).
	MaxRowWidth int
	// RowHeight overrides the technology row height when positive.
	RowHeight int
}

// DefaultOptions returns the partitioning defaults.
func DefaultOptions() Options { return Options{Mode: Strict} }
