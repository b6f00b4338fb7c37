package stripe

import (
	"math"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

// PartitionRegion carves the region into columns and stripes and assigns every
// movable block to its closest stripe.
// Complexity: O(rows·cols + blocks·stripes-per-column).
func PartitionRegion(ckt *circuit.Circuit, opts Options) (*Partition, error) {
	if ckt == nil {
		return nil, ErrNilCircuit
	}
	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = ckt.Tech.RowHeight
	}

	nwell := ckt.Tech.NWell
	if nwell.MaxPlugDist <= 0 {
		return nil, ErrNoWellRules
	}
	sameSpacing := int(math.Ceil(nwell.Spacing / ckt.Tech.GridValueX))
	opSpacing := int(math.Ceil(nwell.OppositeSpacing / ckt.Tech.GridValueX))
	wellSpacing := max(sameSpacing, opSpacing)
	maxUnplug := int(math.Floor(nwell.MaxPlugDist / ckt.Tech.GridValueX))

	region := ckt.Region
	stripeWidth := 2 * maxUnplug
	if opts.MaxRowWidth > 0 {
		stripeWidth = opts.MaxRowWidth
	}
	if stripeWidth > region.Width() {
		stripeWidth = region.Width()
	}
	cols := (region.Width() + stripeWidth - 1) / stripeWidth
	stripeWidth = region.Width() / cols
	if stripeWidth-wellSpacing <= 0 {
		return nil, ErrColumnTooNarrow
	}

	p := &Partition{
		WellSpacing:     wellSpacing,
		MaxUnplugLength: maxUnplug,
		RowHeight:       rowHeight,
		NumRows:         region.Height() / rowHeight,
		Columns:         make([]Column, cols),
	}

	rowSpace := rowWhiteSpace(ckt, p.NumRows, rowHeight)
	minBlkWidth := ckt.MinMovBlkWidth()
	if minBlkWidth <= 0 {
		minBlkWidth = 1
	}

	for i := range p.Columns {
		col := &p.Columns[i]
		col.Lx = region.LLX + i*stripeWidth
		col.Width = stripeWidth - wellSpacing
		if opts.Mode == Scavenge && i == cols-1 {
			col.Width = region.URX - col.Lx
		}
		col.WhiteSpace = make([][]geom.Seg, p.NumRows)
		span := geom.Seg{Lo: col.Lx, Hi: col.Lx + col.Width}
		for r := 0; r < p.NumRows; r++ {
			for _, s := range rowSpace[r] {
				if cut, ok := s.Intersect(span); ok {
					col.WhiteSpace[r] = append(col.WhiteSpace[r], cut)
				}
			}
		}
		buildStripes(col, p, minBlkWidth, region.LLY)
	}

	if err := assignBlocks(ckt, p, stripeWidth); err != nil {
		return nil, err
	}
	return p, nil
}

// rowWhiteSpace subtracts fixed-macro footprints from every row.
func rowWhiteSpace(ckt *circuit.Circuit, numRows, rowHeight int) [][]geom.Seg {
	region := ckt.Region
	out := make([][]geom.Seg, numRows)
	for r := 0; r < numRows; r++ {
		rowLo := region.LLY + r*rowHeight
		rowHi := rowLo + rowHeight
		var holes []geom.Seg
		for i := range ckt.Blocks {
			b := &ckt.Blocks[i]
			if !b.IsFixed() {
				continue
			}
			if int(math.Floor(b.LLY)) >= rowHi || int(math.Ceil(b.URY())) <= rowLo {
				continue
			}
			holes = append(holes, geom.Seg{Lo: int(math.Floor(b.LLX)), Hi: int(math.Ceil(b.URX()))})
		}
		out[r] = geom.SubtractSegs(region.LLX, region.URX, holes)
	}
	return out
}

// buildStripes merges contiguous rows with an identical free span into
// stripes, walking the column bottom-up.
func buildStripes(col *Column, p *Partition, minBlkWidth, regionBottom int) {
	for r := 0; r < p.NumRows; r++ {
		y := regionBottom + r*p.RowHeight
		for _, seg := range col.WhiteSpace[r] {
			if seg.Span() < minBlkWidth {
				continue
			}
			if s := matchStripe(col, seg, y); s != nil {
				s.Height += p.RowHeight
				continue
			}
			col.Stripes = append(col.Stripes, Stripe{
				Lx:           seg.Lo,
				Ly:           y,
				Width:        seg.Span(),
				Height:       p.RowHeight,
				MaxBlkPerRow: seg.Span() / minBlkWidth,
			})
		}
	}
}

// matchStripe finds a stripe with the same span whose top touches y.
func matchStripe(col *Column, seg geom.Seg, y int) *Stripe {
	for i := range col.Stripes {
		s := &col.Stripes[i]
		if s.Lx == seg.Lo && s.Width == seg.Span() && s.URY() == y {
			return s
		}
	}
	return nil
}

// assignBlocks sends every movable block to the closest stripe of its own or
// a neighbouring column, by Manhattan distance from the block center.
func assignBlocks(ckt *circuit.Circuit, p *Partition, stripeWidth int) error {
	cols := len(p.Columns)
	for id := range ckt.Blocks {
		b := &ckt.Blocks[id]
		if !b.IsMovable() {
			continue
		}
		c := (int(math.Round(b.X())) - ckt.Region.LLX) / stripeWidth
		c = min(max(c, 0), cols-1)

		var best *Stripe
		bestDist := math.Inf(1)
		for _, cand := range []int{c - 1, c, c + 1} {
			if cand < 0 || cand >= cols {
				continue
			}
			for i := range p.Columns[cand].Stripes {
				s := &p.Columns[cand].Stripes[i]
				if b.W > s.Width {
					continue // the cell can never fit this stripe
				}
				d := rectDistance(s.Rect(), b.X(), b.Y())
				if d < bestDist {
					bestDist = d
					best = s
				}
			}
		}
		if best == nil {
			return ErrUnassignedBlock
		}
		best.Blocks = append(best.Blocks, id)
	}
	return nil
}

// rectDistance is the Manhattan distance from a point to a rectangle; 0 when
// the point lies inside.
func rectDistance(r geom.Rect, x, y float64) float64 {
	dx := math.Max(0, math.Max(float64(r.LLX)-x, x-float64(r.URX)))
	dy := math.Max(0, math.Max(float64(r.LLY)-y, y-float64(r.URY)))
	return dx + dy
}
