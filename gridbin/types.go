package gridbin

import (
	"errors"

	"github.com/katalvlaran/wellplace/geom"
)

// Sentinel errors for grid construction.
var (
	// ErrNoMovableCells indicates bin sizing is impossible without movable cells.
	ErrNoMovableCells = errors.New("gridbin: circuit has no movable cells")
	// ErrBadFillingRate indicates a target density outside (0, 1].
	ErrBadFillingRate = errors.New("gridbin: target filling rate must be in (0, 1]")
)

// Index addresses one bin.
type Index struct {
	X, Y int
}

// Bin is one tile of the region.
type Bin struct {
	Rect geom.Rect

	// Cells holds ids of movable blocks whose center lies in the bin,
	// refreshed by UpdateState.
	Cells    []int
	CellArea float64

	// Macros holds ids of fixed blocks intersecting the bin, computed once.
	Macros     []int
	WhiteSpace int64

	// AllTerminal marks bins fully covered by fixed macros.
	AllTerminal bool
	// OverFill marks bins exceeding the target density.
	OverFill bool
	// Placed marks bins already covered by an expanded spreading box in the
	// current look-ahead pass.
	Placed bool
}

// FillingRate returns cell area over white space (∞-safe: white space
// floors at 1).
func (b *Bin) FillingRate() float64 {
	ws := b.WhiteSpace
	if ws < 1 {
		ws = 1
	}
	return b.CellArea / float64(ws)
}

// Cluster is a connected set of overfilled bins.
type Cluster struct {
	Bins       []Index
	CellArea   float64
	WhiteSpace int64
}

// Box is the expanded bounding box of a cluster handed to the spreader.
type Box struct {
	LL, UR     Index // inclusive bin index range
	Rect       geom.Rect
	Cells      []int
	CellArea   float64
	WhiteSpace int64
}

// Options tunes the grid.
type Options struct {
	// CellsPerBin is the target number of average-size cells per bin (default 30).
	CellsPerBin int
	// FillingRate is the target placement density in (0, 1] (default 1).
	FillingRate float64
	// ClusterUpperSize caps BFS cluster growth (default 512).
	ClusterUpperSize int
}

// DefaultOptions returns the defaults used by the global placer.
func DefaultOptions() Options {
	return Options{CellsPerBin: 30, FillingRate: 1, ClusterUpperSize: 512}
}

func (o *Options) normalize() error {
	if o.CellsPerBin <= 0 {
		o.CellsPerBin = 30
	}
	if o.ClusterUpperSize <= 0 {
		o.ClusterUpperSize = 512
	}
	if o.FillingRate <= 0 || o.FillingRate > 1 {
		return ErrBadFillingRate
	}
	return nil
}
