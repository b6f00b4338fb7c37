package tetris

import (
	"math"
	"sort"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

// Legalizer snaps movable blocks to rows without overlap.
type Legalizer struct {
	ckt  *circuit.Circuit
	opts Options

	rowHeight int
	numRows   int
	// whiteSpace[r] holds the free x-intervals of row r after subtracting
	// fixed macros; segments narrower than the smallest movable block are
	// discarded at construction.
	whiteSpace [][]geom.Seg
	contour    []int

	order []sortKey
}

type sortKey struct {
	id   int
	x, y float64
}

// New prepares the row decomposition for ckt.
func New(ckt *circuit.Circuit, opts Options) (*Legalizer, error) {
	if ckt == nil {
		return nil, ErrNilCircuit
	}
	opts.normalize()
	rh := opts.RowHeight
	if rh <= 0 {
		rh = ckt.Tech.RowHeight
	}
	if rh <= 0 {
		return nil, ErrBadRowHeight
	}
	l := &Legalizer{
		ckt:       ckt,
		opts:      opts,
		rowHeight: rh,
		numRows:   ckt.Region.Height() / rh,
	}
	l.initWhiteSpace()
	l.contour = make([]int, l.numRows)
	return l, nil
}

func (l *Legalizer) initWhiteSpace() {
	region := l.ckt.Region
	minW := l.ckt.MinMovBlkWidth()
	l.whiteSpace = make([][]geom.Seg, l.numRows)
	for r := 0; r < l.numRows; r++ {
		rowLo := region.LLY + r*l.rowHeight
		rowHi := rowLo + l.rowHeight
		var holes []geom.Seg
		for i := range l.ckt.Blocks {
			b := &l.ckt.Blocks[i]
			if !b.IsFixed() {
				continue
			}
			if int(math.Floor(b.LLY)) >= rowHi || int(math.Ceil(b.URY())) <= rowLo {
				continue
			}
			holes = append(holes, geom.Seg{
				Lo: int(math.Floor(b.LLX)),
				Hi: int(math.Ceil(b.URX())),
			})
		}
		segs := geom.SubtractSegs(region.LLX, region.URX, holes)
		kept := segs[:0]
		for _, s := range segs {
			if s.Span() >= minW {
				kept = append(kept, s)
			}
		}
		l.whiteSpace[r] = kept
	}
}

// RowY returns the y-origin of row r.
func (l *Legalizer) RowY(r int) int { return l.ckt.Region.LLY + r*l.rowHeight }

func (l *Legalizer) rowOf(y float64) int {
	r := int(math.Round((y - float64(l.ckt.Region.LLY)) / float64(l.rowHeight)))
	return min(max(r, 0), l.numRows-1)
}

func (l *Legalizer) rowSpan(h int) int {
	return (h + l.rowHeight - 1) / l.rowHeight
}

// Legalize runs alternating sweeps until one succeeds. It returns false when
// MaxIter sweeps all left at least one block in a best-effort (overlapping)
// location. On success every movable block is row-aligned and overlap-free.
func (l *Legalizer) Legalize() (bool, error) {
	fromLeft := true
	for it := 0; it < l.opts.MaxIter; it++ {
		if err := l.opts.Ctx.Err(); err != nil {
			return false, err
		}
		var ok bool
		if fromLeft {
			ok = l.sweep(it, true)
		} else {
			ok = l.sweep(it, false)
		}
		if ok {
			l.finalize()
			return true, nil
		}
		fromLeft = !fromLeft
	}
	l.finalize()
	return false, nil
}

func (l *Legalizer) finalize() {
	for i := range l.ckt.Blocks {
		b := &l.ckt.Blocks[i]
		if !b.IsMovable() {
			continue
		}
		b.Status = circuit.Placed
		if b.H == l.rowHeight {
			// single-row cells follow the row orientation pattern
			if l.rowOf(b.LLY)%2 == 0 {
				b.Orient = geom.N
			} else {
				b.Orient = geom.FS
			}
		}
	}
}

// sweep packs every movable block once. Blocks keep their best location even
// when no legal slot exists; the return value reports full legality.
func (l *Legalizer) sweep(iter int, fromLeft bool) bool {
	for r := range l.contour {
		if fromLeft {
			l.contour[r] = l.ckt.Region.LLX
		} else {
			l.contour[r] = l.ckt.Region.URX
		}
	}
	l.buildOrder(fromLeft)

	success := true
	for _, key := range l.order {
		b := &l.ckt.Blocks[key.id]
		row, x, found := l.findLoc(b, iter, fromLeft)
		if !found {
			success = false
			continue // best-effort: leave the block where it is
		}
		b.LLX = float64(x)
		b.LLY = float64(l.RowY(row))
		l.useSpace(b, row, fromLeft)
	}
	return success
}

func (l *Legalizer) buildOrder(fromLeft bool) {
	l.order = l.order[:0]
	for i := range l.ckt.Blocks {
		b := &l.ckt.Blocks[i]
		if !b.IsMovable() {
			continue
		}
		k := sortKey{id: i, y: b.LLY}
		if fromLeft {
			k.x = b.LLX - l.opts.KWidth*float64(b.W) - l.opts.KHeight*float64(b.H)
		} else {
			k.x = b.URX() + l.opts.KWidth*float64(b.W) + l.opts.KHeight*float64(b.H)
		}
		l.order = append(l.order, k)
	}
	sort.SliceStable(l.order, func(a, b int) bool {
		ka, kb := l.order[a], l.order[b]
		if ka.x != kb.x {
			if fromLeft {
				return ka.x < kb.x
			}
			return ka.x > kb.x
		}
		if ka.y != kb.y {
			return ka.y < kb.y
		}
		return ka.id < kb.id
	})
}

// findLoc searches the row window around the block's current position for
// the cheapest legal slot. The window is the primary ±(4h, 5h) band widened
// by iter·rowSpan rows on later sweeps.
func (l *Legalizer) findLoc(b *circuit.Block, iter int, fromLeft bool) (row, x int, found bool) {
	span := l.rowSpan(b.H)
	maxStart := l.numRows - span
	if maxStart < 0 {
		return 0, 0, false
	}
	h := float64(b.H)
	lo := l.rowOf(b.LLY-4*h) - iter*span
	hi := l.rowOf(b.LLY+5*h) + iter*span
	lo = min(max(lo, 0), maxStart)
	hi = min(max(hi, 0), maxStart)

	bestCost := math.Inf(1)
	for r := lo; r <= hi; r++ {
		var cx int
		var ok bool
		if fromLeft {
			minX := int(math.Round(b.LLX - l.opts.KLeft*float64(b.W)))
			cx, ok = l.fitLeft(r, span, minX, b.W)
		} else {
			maxX := int(math.Round(b.URX() + l.opts.KLeft*float64(b.W)))
			cx, ok = l.fitRight(r, span, maxX, b.W)
		}
		if !ok {
			continue
		}
		cost := math.Abs(float64(cx)-b.LLX) + math.Abs(float64(l.RowY(r))-b.LLY)
		if cost < bestCost {
			bestCost = cost
			row, x, found = r, cx, true
		}
	}
	return row, x, found
}

// fitLeft returns the leftmost x ≥ minX (and beyond every covered row's
// contour) where [x, x+w) lies inside a white-space segment of rows
// r..r+span−1.
func (l *Legalizer) fitLeft(r, span, minX, w int) (int, bool) {
	x := max(minX, l.ckt.Region.LLX)
	for changed := true; changed; {
		changed = false
		for n := r; n < r+span; n++ {
			if l.contour[n] > x {
				x = l.contour[n]
				changed = true
			}
			nx, ok := fitInRowLeft(l.whiteSpace[n], x, w)
			if !ok {
				return 0, false
			}
			if nx > x {
				x = nx
				changed = true
			}
		}
	}
	if x+w > l.ckt.Region.URX {
		return 0, false
	}
	return x, true
}

// fitRight mirrors fitLeft: rightmost x with x+w ≤ maxX and x+w at or before
// every covered row's contour.
func (l *Legalizer) fitRight(r, span, maxX, w int) (int, bool) {
	hi := min(maxX, l.ckt.Region.URX)
	for changed := true; changed; {
		changed = false
		for n := r; n < r+span; n++ {
			if l.contour[n] < hi {
				hi = l.contour[n]
				changed = true
			}
			nhi, ok := fitInRowRight(l.whiteSpace[n], hi, w)
			if !ok {
				return 0, false
			}
			if nhi < hi {
				hi = nhi
				changed = true
			}
		}
	}
	if hi-w < l.ckt.Region.LLX {
		return 0, false
	}
	return hi - w, true
}

// fitInRowLeft finds the smallest x' ≥ x with [x', x'+w) inside one segment.
func fitInRowLeft(segs []geom.Seg, x, w int) (int, bool) {
	for _, s := range segs {
		start := max(x, s.Lo)
		if start+w <= s.Hi {
			return start, true
		}
	}
	return 0, false
}

// fitInRowRight finds the largest upper edge hi' ≤ hi with [hi'−w, hi')
// inside one segment.
func fitInRowRight(segs []geom.Seg, hi, w int) (int, bool) {
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		end := min(hi, s.Hi)
		if end-w >= s.Lo {
			return end, true
		}
	}
	return 0, false
}

func (l *Legalizer) useSpace(b *circuit.Block, row int, fromLeft bool) {
	span := l.rowSpan(b.H)
	for n := row; n < row+span; n++ {
		if fromLeft {
			l.contour[n] = int(b.URX())
		} else {
			l.contour[n] = int(b.LLX)
		}
	}
}
