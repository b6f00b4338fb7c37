package circuit

import "github.com/katalvlaran/wellplace/geom"

// BlockStatus tracks the lifecycle of a block instance.
type BlockStatus int

const (
	// Unplaced blocks have no meaningful location yet.
	Unplaced BlockStatus = iota
	// Placed blocks carry a location produced by a placement phase.
	Placed
	// Fixed blocks never move; they act as blockages.
	Fixed
	// Cover blocks are fixed blocks that pre-date placement (e.g. power straps).
	Cover
)

// Pin is a pin definition on a block type. Offsets are relative to the cell
// origin in the N orientation.
type Pin struct {
	Name    string
	OffsetX float64
	OffsetY float64
}

// MultiWell describes the ordered N-well and P-well rectangles of a cell
// type, bottom to top, relative to the cell origin. Single-height standard
// cells have one rectangle per list; multi-region cells have several.
type MultiWell struct {
	NRects []geom.Rect
	PRects []geom.Rect
}

// RegionCount returns the number of abutted (P-well, N-well) pairs.
func (w *MultiWell) RegionCount() int {
	if w == nil {
		return 1
	}
	return max(len(w.NRects), len(w.PRects))
}

// PHeight returns the P-well height of region r for the N orientation.
func (w *MultiWell) PHeight(r int) int { return w.PRects[r].Height() }

// NHeight returns the N-well height of region r for the N orientation.
func (w *MultiWell) NHeight(r int) int { return w.NRects[r].Height() }

// RegionHeight returns the total height of region r.
func (w *MultiWell) RegionHeight(r int) int { return w.PHeight(r) + w.NHeight(r) }

// BlockType is a cell-library entry.
type BlockType struct {
	Name   string
	Width  int
	Height int
	Pins   []Pin
	Well   *MultiWell // nil for cells without well geometry
}

// RegionCount returns the well region count of the type; 1 when no well
// geometry is attached.
func (t *BlockType) RegionCount() int { return t.Well.RegionCount() }

// Block is a cell instance. LLX/LLY are real-valued during global placement
// and integral after legalization.
type Block struct {
	ID     int
	Name   string
	TypeID int
	LLX    float64
	LLY    float64
	Orient geom.Orient
	Status BlockStatus

	// StretchLengths has length RegionCount−1 for multi-region cells and
	// records the extra well height inserted between adjacent regions.
	StretchLengths []int

	// Cached from the type at load time; hot paths avoid a type lookup.
	W int
	H int
}

// IsMovable reports whether placement phases may move the block.
func (b *Block) IsMovable() bool { return b.Status == Unplaced || b.Status == Placed }

// IsFixed reports whether the block is a blockage.
func (b *Block) IsFixed() bool { return b.Status == Fixed || b.Status == Cover }

// URX returns LLX + width.
func (b *Block) URX() float64 { return b.LLX + float64(b.W) }

// URY returns LLY + height.
func (b *Block) URY() float64 { return b.LLY + float64(b.H) }

// X returns the center x-coordinate.
func (b *Block) X() float64 { return b.LLX + float64(b.W)/2 }

// Y returns the center y-coordinate.
func (b *Block) Y() float64 { return b.LLY + float64(b.H)/2 }

// Area returns width × height.
func (b *Block) Area() float64 { return float64(b.W) * float64(b.H) }

// SetCenter moves the block so its center lands at (x, y).
func (b *Block) SetCenter(x, y float64) {
	b.LLX = x - float64(b.W)/2
	b.LLY = y - float64(b.H)/2
}

// Overlaps reports whether two blocks share interior area.
func (b *Block) Overlaps(o *Block) bool {
	return b.LLX < o.URX() && o.LLX < b.URX() && b.LLY < o.URY() && o.LLY < b.URY()
}

// NetPin is one (block, pin) connection of a net.
type NetPin struct {
	BlockID int
	PinID   int
}

// Net is a weighted pin list. The extreme-pin indices are caches maintained
// by UpdateMaxMinX/Y; they index into Pins.
type Net struct {
	Pins   []NetPin
	Weight float64
	InvP   float64 // 1/(p−1), precomputed at load

	MinX, MaxX int
	MinY, MaxY int
}

// PinCount returns the number of pins.
func (n *Net) PinCount() int { return len(n.Pins) }

// WellLayer carries the design rules of one well layer, in microns.
type WellLayer struct {
	Width           float64
	Spacing         float64
	OppositeSpacing float64
	MaxPlugDist     float64
	Overhang        float64
}

// Tech is the read-only technology view the core consumes.
type Tech struct {
	NWell WellLayer
	PWell WellLayer

	// Microns per placement grid unit.
	GridValueX float64
	GridValueY float64

	// RowHeight in grid units.
	RowHeight int

	// Service cell types; −1 when the library provides none.
	WellTapTypeID int
	PreEndCapID   int
	PostEndCapID  int

	// FirstRowOrientN selects the orientation of the bottom gridded row.
	// Whether true is correct depends on the library's dummy-well convention.
	FirstRowOrientN bool
}
