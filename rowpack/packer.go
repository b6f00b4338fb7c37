package rowpack

import (
	"sort"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
	"github.com/katalvlaran/wellplace/stripe"
)

// PackStripe packs the stripe's blocks into gridded rows, retrying with
// alternating direction until a pass fits inside the stripe or MaxIter runs
// out. On success the rows are finalized: y-origins stacked from the stripe
// bottom, orientations alternating from FirstRowOrientN, member blocks
// aligned and stretched, and one full-width RowSegment built per row.
//
// The returned flag is false when every pass spilled; the last pass's rows
// are still returned (finalized best-effort) so the caller can inspect or
// retry at lower density.
func PackStripe(ckt *circuit.Circuit, s *stripe.Stripe, opts Options) ([]GriddedRow, bool, error) {
	if ckt == nil {
		return nil, false, ErrNilCircuit
	}
	if s == nil {
		return nil, false, ErrNilStripe
	}
	opts.normalize()

	for _, id := range s.Blocks {
		b := &ckt.Blocks[id]
		if ckt.Types[b.TypeID].Well == nil {
			return nil, false, ErrNoWellInfo
		}
		if b.W > s.Width {
			return nil, false, ErrBlockWiderThanStripe
		}
	}

	var rows []GriddedRow
	ok := false
	upward := true
	for it := 0; it < opts.MaxIter; it++ {
		rows = packPass(ckt, s, opts, upward)
		if stackHeight(rows) <= s.Height {
			ok = true
			break
		}
		upward = !upward
	}
	finalize(ckt, s, opts, rows)
	return rows, ok, nil
}

func stackHeight(rows []GriddedRow) int {
	h := 0
	for i := range rows {
		h += rows[i].Height()
	}
	return h
}

// packPass fills rows greedily in one direction. Row y-origins and
// orientations are not assigned here; only membership, widths and well
// heights are. The returned slice is ordered bottom row first.
func packPass(ckt *circuit.Circuit, s *stripe.Stripe, opts Options, upward bool) []GriddedRow {
	order := make([]int, len(s.Blocks))
	copy(order, s.Blocks)
	sort.SliceStable(order, func(a, b int) bool {
		ba, bb := &ckt.Blocks[order[a]], &ckt.Blocks[order[b]]
		if upward {
			if ba.LLY != bb.LLY {
				return ba.LLY < bb.LLY
			}
		} else {
			if ba.URY() != bb.URY() {
				return ba.URY() > bb.URY()
			}
		}
		if ba.LLX != bb.LLX {
			return ba.LLX < bb.LLX
		}
		return order[a] < order[b]
	})

	var rows []GriddedRow
	front := 0
	newRow := func() GriddedRow {
		return GriddedRow{
			Lx:      s.Lx,
			Width:   s.Width,
			PHeight: opts.TapPHeight,
			NHeight: opts.TapNHeight,
		}
	}
	ensure := func(i int) {
		for len(rows) <= i {
			rows = append(rows, newRow())
		}
	}
	ensure(0)

	for _, id := range order {
		b := &ckt.Blocks[id]
		well := ckt.Types[b.TypeID].Well
		rc := well.RegionCount()

		// every row the block touches must take its width before any region
		// is committed; a full row anywhere in the span closes the front and
		// the attempt restarts one row higher. Rows beyond the stack are
		// empty, so the walk always lands.
		for !rowsFit(rows, front, rc, b.W, s) {
			front++
			ensure(front)
		}
		ensure(front + rc - 1)
		for k := 0; k < rc; k++ {
			// upward passes meet region 0 first; downward passes meet the
			// top region first
			region := k
			if !upward {
				region = rc - 1 - k
			}
			row := &rows[front+k]
			row.Regions = append(row.Regions, BlockRegion{BlockID: id, Region: region})
			row.UsedSize += b.W
			if ph := well.PHeight(region); ph > row.PHeight {
				row.PHeight = ph
			}
			if nh := well.NHeight(region); nh > row.NHeight {
				row.NHeight = nh
			}
		}
	}

	if !upward {
		// downward packs from the stripe top; restore bottom-first order
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows
}

// rowsFit reports whether rows front..front+rc−1 can all absorb one more
// region of width w. Rows not yet created count as empty; a non-positive
// MaxBlkPerRow means uncapped.
func rowsFit(rows []GriddedRow, front, rc, w int, s *stripe.Stripe) bool {
	for k := 0; k < rc; k++ {
		if front+k >= len(rows) {
			break
		}
		r := &rows[front+k]
		if r.UsedSize+w > s.Width {
			return false
		}
		if s.MaxBlkPerRow > 0 && len(r.Regions) >= s.MaxBlkPerRow {
			return false
		}
	}
	return true
}

// finalize stacks row origins from the stripe bottom, assigns alternating
// orientations, aligns member blocks to their rows' well boundaries, writes
// stretch vectors and builds the row segments.
func finalize(ckt *circuit.Circuit, s *stripe.Stripe, opts Options, rows []GriddedRow) {
	y := s.Ly
	for i := range rows {
		rows[i].Ly = y
		y += rows[i].Height()
		rows[i].OrientN = opts.FirstRowOrientN == (i%2 == 0)
	}

	// bottom row index of every block
	bottomRow := map[int]int{}
	for i := range rows {
		for _, br := range rows[i].Regions {
			if cur, ok := bottomRow[br.BlockID]; !ok || i < cur {
				bottomRow[br.BlockID] = i
			}
		}
	}

	for id, f := range bottomRow {
		b := &ckt.Blocks[id]
		well := ckt.Types[b.TypeID].Well
		rc := well.RegionCount()

		b.LLY = float64(rows[f].Ly + bottomAlign(&rows[f], well, 0))
		if rc%2 == 0 || rc == 1 {
			// cells with an even region count (and standard cells) follow
			// the row orientation
			if rows[f].OrientN {
				b.Orient = geom.N
			} else {
				b.Orient = geom.FS
			}
		}

		cur := rows[f].Ly + bottomAlign(&rows[f], well, 0) + well.RegionHeight(0)
		for k := 1; k < rc; k++ {
			row := &rows[f+k]
			want := row.Ly + bottomAlign(row, well, k)
			b.StretchLengths[k-1] = want - cur
			cur = want + well.RegionHeight(k)
		}
		b.Status = circuit.Placed
	}

	for i := range rows {
		buildSegment(ckt, &rows[i])
	}
}

// bottomAlign returns how far above the row origin a cell region's bottom
// must sit so its bottom well abuts the row's well boundary.
func bottomAlign(row *GriddedRow, well *circuit.MultiWell, region int) int {
	if row.OrientN {
		return row.PHeight - well.PHeight(region)
	}
	return row.NHeight - well.NHeight(region)
}

// buildSegment creates the row's single full-width segment holding every
// block region with its current x as the initial location, sorted by x.
func buildSegment(ckt *circuit.Circuit, row *GriddedRow) {
	seg := RowSegment{Lo: row.Lx, Hi: row.Lx + row.Width}
	regions := make([]BlockRegion, len(row.Regions))
	copy(regions, row.Regions)
	sort.SliceStable(regions, func(a, b int) bool {
		xa := ckt.Blocks[regions[a].BlockID].LLX
		xb := ckt.Blocks[regions[b].BlockID].LLX
		if xa != xb {
			return xa < xb
		}
		return regions[a].BlockID < regions[b].BlockID
	})
	seg.Regions = regions
	seg.InitX = make([]float64, len(regions))
	for i, br := range regions {
		seg.InitX[i] = ckt.Blocks[br.BlockID].LLX
	}
	row.Segments = []RowSegment{seg}
}
