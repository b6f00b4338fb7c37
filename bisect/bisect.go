package bisect

import (
	"sort"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
	"github.com/katalvlaran/wellplace/gridbin"
)

// boxBin is one node of the bisection. ll/ur address the covered bin range;
// rect may be narrower than the bin range once macro splitting starts.
type boxBin struct {
	ll, ur     gridbin.Index
	rect       geom.Rect
	cells      []int
	whiteSpace int64
	cutX       bool
}

// dominatedShare is the white-space fraction below which a split half is
// dropped and its sibling inherits all cells.
const dominatedShare = 0.01

// Spread declusters the cells of an expanded overflow box. On return every
// cell of root sits inside a macro-free leaf rectangle of the box.
// Complexity: O(cells · log cells · depth) with depth bounded by the bin
// count of the box plus the macro boundaries inside it.
func Spread(ckt *circuit.Circuit, g *gridbin.Grid, root gridbin.Box) {
	stack := []boxBin{{
		ll:         root.LL,
		ur:         root.UR,
		rect:       root.Rect,
		cells:      root.Cells,
		whiteSpace: root.WhiteSpace,
		cutX:       false,
	}}
	for len(stack) > 0 {
		box := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(box.cells) == 0 {
			continue
		}
		if box.ll != box.ur {
			stack = splitBox(ckt, g, box, stack)
			continue
		}
		if macros := macrosOverlapping(ckt, g, box); len(macros) > 0 {
			stack = splitGridBox(ckt, g, box, macros, stack)
			continue
		}
		placeInBox(ckt, box)
	}
}

// splitBox cuts a multi-bin box at the bin boundary balancing white space on
// the current axis, falling back to the other axis when the current one has
// a single bin column/row.
func splitBox(ckt *circuit.Circuit, g *gridbin.Grid, box boxBin, stack []boxBin) []boxBin {
	cutX := box.cutX
	if cutX && box.ll.X == box.ur.X {
		cutX = false
	} else if !cutX && box.ll.Y == box.ur.Y {
		cutX = true
	}

	// find the first cut where the low side holds at least half the white space
	var cut int
	if cutX {
		cut = box.ur.X - 1
		for c := box.ll.X; c < box.ur.X; c++ {
			if 2*g.WhiteSpace(box.ll, gridbin.Index{X: c, Y: box.ur.Y}) >= box.whiteSpace {
				cut = c
				break
			}
		}
	} else {
		cut = box.ur.Y - 1
		for c := box.ll.Y; c < box.ur.Y; c++ {
			if 2*g.WhiteSpace(box.ll, gridbin.Index{X: box.ur.X, Y: c}) >= box.whiteSpace {
				cut = c
				break
			}
		}
	}

	var lo, hi boxBin
	lo.cutX, hi.cutX = !cutX, !cutX
	lo.ll, hi.ur = box.ll, box.ur
	if cutX {
		lo.ur = gridbin.Index{X: cut, Y: box.ur.Y}
		hi.ll = gridbin.Index{X: cut + 1, Y: box.ll.Y}
	} else {
		lo.ur = gridbin.Index{X: box.ur.X, Y: cut}
		hi.ll = gridbin.Index{X: box.ll.X, Y: cut + 1}
	}
	lo.rect = binRangeRect(g, lo.ll, lo.ur)
	hi.rect = binRangeRect(g, hi.ll, hi.ur)
	lo.whiteSpace = g.WhiteSpace(lo.ll, lo.ur)
	hi.whiteSpace = g.WhiteSpace(hi.ll, hi.ur)

	lo.cells, hi.cells = distributeCells(ckt, box.cells, cutX, lo.whiteSpace, hi.whiteSpace, box.whiteSpace)
	return append(stack, hi, lo)
}

// splitGridBox cuts a single-bin box along the first macro boundary, on the
// axis holding more boundaries.
func splitGridBox(ckt *circuit.Circuit, g *gridbin.Grid, box boxBin, macros []int, stack []boxBin) []boxBin {
	var xs, ys []int
	for _, id := range macros {
		m := &ckt.Blocks[id]
		r := blockRect(m)
		if r.LLX > box.rect.LLX && r.LLX < box.rect.URX {
			xs = append(xs, r.LLX)
		}
		if r.URX > box.rect.LLX && r.URX < box.rect.URX {
			xs = append(xs, r.URX)
		}
		if r.LLY > box.rect.LLY && r.LLY < box.rect.URY {
			ys = append(ys, r.LLY)
		}
		if r.URY > box.rect.LLY && r.URY < box.rect.URY {
			ys = append(ys, r.URY)
		}
	}
	sort.Ints(xs)
	sort.Ints(ys)
	if len(xs) == 0 && len(ys) == 0 {
		// macros touch only the box frame; nothing to cut around
		placeInBox(ckt, box)
		return stack
	}

	lo, hi := box, box
	cutX := len(xs) > len(ys)
	if cutX {
		lo.rect.URX = xs[0]
		hi.rect.LLX = xs[0]
	} else {
		lo.rect.URY = ys[0]
		hi.rect.LLY = ys[0]
	}
	lo.whiteSpace = rectWhiteSpace(ckt, lo.rect, macros)
	hi.whiteSpace = rectWhiteSpace(ckt, hi.rect, macros)
	lo.cells, hi.cells = distributeCells(ckt, box.cells, cutX, lo.whiteSpace, hi.whiteSpace, lo.whiteSpace+hi.whiteSpace)
	return append(stack, hi, lo)
}

// distributeCells orders cells along the cut axis and hands the prefix to
// the low side so cell area splits in proportion to white space. A dominated
// side receives nothing.
func distributeCells(ckt *circuit.Circuit, cells []int, cutX bool, wsLo, wsHi, wsTotal int64) (lo, hi []int) {
	if wsTotal < 1 {
		wsTotal = 1
	}
	if float64(wsLo)/float64(wsTotal) <= dominatedShare {
		return nil, cells
	}
	if float64(wsHi)/float64(wsTotal) <= dominatedShare {
		return cells, nil
	}
	sorted := make([]int, len(cells))
	copy(sorted, cells)
	sort.SliceStable(sorted, func(a, b int) bool {
		ba, bb := &ckt.Blocks[sorted[a]], &ckt.Blocks[sorted[b]]
		pa, pb := ba.X(), bb.X()
		if !cutX {
			pa, pb = ba.Y(), bb.Y()
		}
		if pa != pb {
			return pa < pb
		}
		return sorted[a] < sorted[b]
	})
	total := 0.0
	for _, id := range sorted {
		total += ckt.Blocks[id].Area()
	}
	target := total * float64(wsLo) / float64(wsLo+wsHi)
	acc := 0.0
	split := 0
	for split < len(sorted) {
		next := acc + ckt.Blocks[sorted[split]].Area()
		if acc > 0 && next > target && next-target > target-acc {
			break
		}
		acc = next
		split++
	}
	return sorted[:split], sorted[split:]
}

// placeInBox spreads the leaf's cells linearly: sorted by center, centers at
// cumulative-size fractions of the box span, per axis independently.
func placeInBox(ckt *circuit.Circuit, box boxBin) {
	ids := make([]int, len(box.cells))
	copy(ids, box.cells)

	// x sweep
	sort.SliceStable(ids, func(a, b int) bool {
		if ckt.Blocks[ids[a]].X() != ckt.Blocks[ids[b]].X() {
			return ckt.Blocks[ids[a]].X() < ckt.Blocks[ids[b]].X()
		}
		return ids[a] < ids[b]
	})
	totalW := 0.0
	for _, id := range ids {
		totalW += float64(ckt.Blocks[id].W)
	}
	cur := 0.0
	span := float64(box.rect.Width())
	for _, id := range ids {
		b := &ckt.Blocks[id]
		b.SetCenter(float64(box.rect.LLX)+cur/totalW*span, b.Y())
		cur += float64(b.W)
	}

	// y sweep
	sort.SliceStable(ids, func(a, b int) bool {
		if ckt.Blocks[ids[a]].Y() != ckt.Blocks[ids[b]].Y() {
			return ckt.Blocks[ids[a]].Y() < ckt.Blocks[ids[b]].Y()
		}
		return ids[a] < ids[b]
	})
	totalH := 0.0
	for _, id := range ids {
		totalH += float64(ckt.Blocks[id].H)
	}
	cur = 0.0
	span = float64(box.rect.Height())
	for _, id := range ids {
		b := &ckt.Blocks[id]
		b.SetCenter(b.X(), float64(box.rect.LLY)+cur/totalH*span)
		cur += float64(b.H)
	}
}

func macrosOverlapping(ckt *circuit.Circuit, g *gridbin.Grid, box boxBin) []int {
	var out []int
	for _, id := range g.MacrosIn(box.ll, box.ur) {
		if blockRect(&ckt.Blocks[id]).Overlaps(box.rect) {
			out = append(out, id)
		}
	}
	return out
}

func rectWhiteSpace(ckt *circuit.Circuit, r geom.Rect, macros []int) int64 {
	ws := r.Area()
	for _, id := range macros {
		ws -= r.OverlapArea(blockRect(&ckt.Blocks[id]))
	}
	if ws < 0 {
		ws = 0
	}
	return ws
}

func blockRect(b *circuit.Block) geom.Rect {
	return geom.Rect{
		LLX: int(b.LLX), LLY: int(b.LLY),
		URX: int(b.LLX) + b.W, URY: int(b.LLY) + b.H,
	}
}

func binRangeRect(g *gridbin.Grid, ll, ur gridbin.Index) geom.Rect {
	return geom.Rect{
		LLX: g.Bins[ll.X][ll.Y].Rect.LLX,
		LLY: g.Bins[ll.X][ll.Y].Rect.LLY,
		URX: g.Bins[ur.X][ur.Y].Rect.URX,
		URY: g.Bins[ur.X][ur.Y].Rect.URY,
	}
}
