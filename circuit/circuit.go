package circuit

import (
	"math"

	"github.com/katalvlaran/wellplace/geom"
)

// Circuit owns every block, type and net of a design together with the
// placement region and technology. It is the single mutable store; placement
// phases address children by id.
type Circuit struct {
	Types  []BlockType
	Blocks []Block
	Nets   []Net
	Tech   Tech
	Region geom.Rect
}

// New returns an empty circuit over the given region.
// Returns ErrEmptyRegion when the region is degenerate.
func New(region geom.Rect, tech Tech) (*Circuit, error) {
	if region.Width() <= 0 || region.Height() <= 0 {
		return nil, ErrEmptyRegion
	}
	if tech.RowHeight <= 0 {
		return nil, ErrBadRowHeight
	}
	return &Circuit{Tech: tech, Region: region}, nil
}

// AddType validates and appends a block type, returning its id.
// Well invariants checked here (fail fast, corrupt input):
//   - |N-rects| == |P-rects|
//   - wells of adjacent regions abut vertically (P below N in even regions,
//     N below P in odd regions, so abutted regions share a well type)
//   - the type height equals the top rectangle's URY
func (c *Circuit) AddType(t BlockType) (int, error) {
	if w := t.Well; w != nil {
		if len(w.NRects) != len(w.PRects) {
			return 0, invariantf(t.Name, "well rectangle counts differ: %d N vs %d P",
				len(w.NRects), len(w.PRects))
		}
		// wells alternate bottom-to-top: P,N in region 0, N,P in region 1, …
		// so abutted regions share a well of the same type
		y := 0
		for r := range w.PRects {
			lower, upper := w.PRects[r], w.NRects[r]
			if r%2 == 1 {
				lower, upper = upper, lower
			}
			if lower.LLY != y {
				return 0, invariantf(t.Name, "region %d lower well bottom %d, want %d",
					r, lower.LLY, y)
			}
			if upper.LLY != lower.URY {
				return 0, invariantf(t.Name, "region %d wells not abutted: upper bottom %d, lower top %d",
					r, upper.LLY, lower.URY)
			}
			y = upper.URY
		}
		if y != t.Height {
			return 0, invariantf(t.Name, "cell height %d inconsistent with well sum %d",
				t.Height, y)
		}
	}
	c.Types = append(c.Types, t)
	return len(c.Types) - 1, nil
}

// AddBlock appends a block instance of the given type and returns its id.
func (c *Circuit) AddBlock(name string, typeID int, llx, lly float64, status BlockStatus) (int, error) {
	if typeID < 0 || typeID >= len(c.Types) {
		return 0, ErrUnknownType
	}
	t := &c.Types[typeID]
	id := len(c.Blocks)
	b := Block{
		ID:     id,
		Name:   name,
		TypeID: typeID,
		LLX:    llx,
		LLY:    lly,
		Orient: geom.N,
		Status: status,
		W:      t.Width,
		H:      t.Height,
	}
	if rc := t.RegionCount(); rc > 1 {
		b.StretchLengths = make([]int, rc-1)
	}
	c.Blocks = append(c.Blocks, b)
	return id, nil
}

// AddNet validates pin references and appends a net, returning its id.
func (c *Circuit) AddNet(pins []NetPin, weight float64) (int, error) {
	for _, p := range pins {
		if p.BlockID < 0 || p.BlockID >= len(c.Blocks) {
			return 0, ErrUnknownBlock
		}
		t := &c.Types[c.Blocks[p.BlockID].TypeID]
		if p.PinID < 0 || p.PinID >= len(t.Pins) {
			return 0, ErrUnknownPin
		}
	}
	n := Net{Pins: pins, Weight: weight}
	if len(pins) > 1 {
		n.InvP = 1 / float64(len(pins)-1)
	}
	c.Nets = append(c.Nets, n)
	return len(c.Nets) - 1, nil
}

// Type returns the type of a block.
func (c *Circuit) Type(b *Block) *BlockType { return &c.Types[b.TypeID] }

// PinPos returns the absolute position of pin k of net n.
func (c *Circuit) PinPos(n *Net, k int) (float64, float64) {
	np := n.Pins[k]
	b := &c.Blocks[np.BlockID]
	p := &c.Types[b.TypeID].Pins[np.PinID]
	return b.LLX + p.OffsetX, b.LLY + p.OffsetY
}

// PinOffset returns the pin offset of pin k of net n.
func (c *Circuit) PinOffset(n *Net, k int) (float64, float64) {
	np := n.Pins[k]
	b := &c.Blocks[np.BlockID]
	p := &c.Types[b.TypeID].Pins[np.PinID]
	return p.OffsetX, p.OffsetY
}

// UpdateMaxMinX refreshes the cached extreme-pin indices of net n along x.
func (c *Circuit) UpdateMaxMinX(n *Net) {
	n.MinX, n.MaxX = 0, 0
	minV, maxV := math.Inf(1), math.Inf(-1)
	for k := range n.Pins {
		x, _ := c.PinPos(n, k)
		if x < minV {
			minV, n.MinX = x, k
		}
		if x > maxV {
			maxV, n.MaxX = x, k
		}
	}
}

// UpdateMaxMinY refreshes the cached extreme-pin indices of net n along y.
func (c *Circuit) UpdateMaxMinY(n *Net) {
	n.MinY, n.MaxY = 0, 0
	minV, maxV := math.Inf(1), math.Inf(-1)
	for k := range n.Pins {
		_, y := c.PinPos(n, k)
		if y < minV {
			minV, n.MinY = y, k
		}
		if y > maxV {
			maxV, n.MaxY = y, k
		}
	}
}

// HPWLX returns the weighted half-perimeter wirelength along x.
func (c *Circuit) HPWLX() float64 {
	total := 0.0
	for i := range c.Nets {
		n := &c.Nets[i]
		if n.PinCount() <= 1 {
			continue
		}
		c.UpdateMaxMinX(n)
		lo, _ := c.PinPos(n, n.MinX)
		hi, _ := c.PinPos(n, n.MaxX)
		w := n.Weight
		if w == 0 {
			w = 1
		}
		total += w * (hi - lo)
	}
	return total
}

// HPWLY returns the weighted half-perimeter wirelength along y.
func (c *Circuit) HPWLY() float64 {
	total := 0.0
	for i := range c.Nets {
		n := &c.Nets[i]
		if n.PinCount() <= 1 {
			continue
		}
		c.UpdateMaxMinY(n)
		_, lo := c.PinPos(n, n.MinY)
		_, hi := c.PinPos(n, n.MaxY)
		w := n.Weight
		if w == 0 {
			w = 1
		}
		total += w * (hi - lo)
	}
	return total
}

// HPWL returns the weighted half-perimeter wirelength of the whole design.
func (c *Circuit) HPWL() float64 { return c.HPWLX() + c.HPWLY() }

// AveMovBlkArea returns the average area of movable blocks (0 when none).
func (c *Circuit) AveMovBlkArea() float64 {
	sum, cnt := 0.0, 0
	for i := range c.Blocks {
		if c.Blocks[i].IsMovable() {
			sum += c.Blocks[i].Area()
			cnt++
		}
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}

// AveMovBlkWidth returns the average width of movable blocks.
func (c *Circuit) AveMovBlkWidth() float64 {
	sum, cnt := 0.0, 0
	for i := range c.Blocks {
		if c.Blocks[i].IsMovable() {
			sum += float64(c.Blocks[i].W)
			cnt++
		}
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}

// AveMovBlkHeight returns the average height of movable blocks.
func (c *Circuit) AveMovBlkHeight() float64 {
	sum, cnt := 0.0, 0
	for i := range c.Blocks {
		if c.Blocks[i].IsMovable() {
			sum += float64(c.Blocks[i].H)
			cnt++
		}
	}
	if cnt == 0 {
		return 0
	}
	return sum / float64(cnt)
}

// MinMovBlkWidth returns the smallest movable block width (0 when none).
func (c *Circuit) MinMovBlkWidth() int {
	best := 0
	for i := range c.Blocks {
		if !c.Blocks[i].IsMovable() {
			continue
		}
		if best == 0 || c.Blocks[i].W < best {
			best = c.Blocks[i].W
		}
	}
	return best
}

// MaxMovBlkWidth returns the widest movable block width.
func (c *Circuit) MaxMovBlkWidth() int {
	best := 0
	for i := range c.Blocks {
		if c.Blocks[i].IsMovable() && c.Blocks[i].W > best {
			best = c.Blocks[i].W
		}
	}
	return best
}

// TotalMovArea returns the summed area of movable blocks.
func (c *Circuit) TotalMovArea() float64 {
	sum := 0.0
	for i := range c.Blocks {
		if c.Blocks[i].IsMovable() {
			sum += c.Blocks[i].Area()
		}
	}
	return sum
}
