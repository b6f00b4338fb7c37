package welltap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
	"github.com/katalvlaran/wellplace/rowlegal"
	"github.com/katalvlaran/wellplace/rowpack"
	"github.com/katalvlaran/wellplace/stripe"
)

// Sentinel errors for insertion.
var (
	// ErrNilCircuit indicates a missing circuit.
	ErrNilCircuit = errors.New("welltap: circuit must not be nil")
	// ErrNoTapType indicates the technology names no well-tap cell type.
	ErrNoTapType = errors.New("welltap: technology has no well-tap cell type")
	// ErrNoEndCapType indicates the technology names no end-cap cell types.
	ErrNoEndCapType = errors.New("welltap: technology has no end-cap cell types")
)

// Options tunes insertion.
type Options struct {
	// CheckerBoard doubles the tap step and staggers odd rows.
	CheckerBoard bool
	// IntervalMicrons overrides the tap interval; 0 selects 2·maxPlugDist
	// (4· in checker-board mode).
	IntervalMicrons float64
	// EndCaps enables end-cap insertion.
	EndCaps bool
}

// DefaultOptions returns the insertion defaults.
func DefaultOptions() Options { return Options{EndCaps: true} }

// Result lists the instances added to the circuit. Legal is false when some
// resident cell found no segment with room after the service cells landed.
type Result struct {
	TapIDs []int
	CapIDs []int
	Legal  bool
}

// Insert places well-tap cells (and optionally end-caps) into every row of
// the stripe. Service cells are fixed at their exact positions; they carve
// the row into new white-space segments, the resident cells are re-assigned
// to the nearest segment with room, and each segment is re-legalized.
func Insert(ckt *circuit.Circuit, s *stripe.Stripe, rows []rowpack.GriddedRow, opts Options) (Result, error) {
	if ckt == nil {
		return Result{}, ErrNilCircuit
	}
	if ckt.Tech.WellTapTypeID < 0 {
		return Result{}, ErrNoTapType
	}
	if opts.EndCaps && (ckt.Tech.PreEndCapID < 0 || ckt.Tech.PostEndCapID < 0) {
		return Result{}, ErrNoEndCapType
	}
	// capture the width now: AddType appends below and may regrow the slice
	tapW := ckt.Types[ckt.Tech.WellTapTypeID].Width

	interval := opts.IntervalMicrons
	if interval <= 0 {
		interval = 2 * ckt.Tech.NWell.MaxPlugDist
		if opts.CheckerBoard {
			interval = 4 * ckt.Tech.NWell.MaxPlugDist
		}
	}
	step := int(math.Floor(interval / ckt.Tech.GridValueX))
	if step < tapW {
		step = tapW
	}
	even, odd := tapPositions(s, tapW, step, opts.CheckerBoard)

	capTypes := map[[2]int][2]int{}
	res := Result{Legal: true}
	for i := range rows {
		row := &rows[i]
		var blockages []geom.Seg

		xs := even
		if opts.CheckerBoard && i%2 == 1 {
			xs = odd
		}
		for _, x := range xs {
			if !hasRoom(ckt, row, tapW) {
				break
			}
			id := addService(ckt, row, ckt.Tech.WellTapTypeID, x,
				fmt.Sprintf("__well_tap_%d", len(res.TapIDs)))
			blockages = append(blockages, geom.Seg{Lo: x, Hi: x + tapW})
			res.TapIDs = append(res.TapIDs, id)
		}

		if opts.EndCaps {
			pre, post, err := capTypesFor(ckt, capTypes, row)
			if err != nil {
				return res, err
			}
			preW := ckt.Types[pre].Width
			postW := ckt.Types[post].Width
			if hasRoom(ckt, row, preW) {
				id := addService(ckt, row, pre, row.Lx, fmt.Sprintf("__endcap_pre_%d", len(res.CapIDs)))
				blockages = append(blockages, geom.Seg{Lo: row.Lx, Hi: row.Lx + preW})
				res.CapIDs = append(res.CapIDs, id)
			}
			if hasRoom(ckt, row, postW) {
				x := row.Lx + row.Width - postW
				id := addService(ckt, row, post, x, fmt.Sprintf("__endcap_post_%d", len(res.CapIDs)))
				blockages = append(blockages, geom.Seg{Lo: x, Hi: x + postW})
				res.CapIDs = append(res.CapIDs, id)
			}
		}

		if !rebuildSegments(ckt, row, blockages) {
			res.Legal = false
		}
		for si := range row.Segments {
			_ = rowlegal.LegalizeSegment(ckt, &row.Segments[si])
		}
	}
	return res, nil
}

// tapPositions precomputes the tap x-positions of a stripe: start half an
// interval in, step by the interval; checker-board staggers the odd rows.
// A stripe narrower than one interval still gets a centered tap.
func tapPositions(s *stripe.Stripe, tapW, step int, checker bool) (even, odd []int) {
	rowStep := step
	if checker {
		rowStep = 2 * step
	}
	for x := s.Lx + step/2; x+tapW <= s.URX(); x += rowStep {
		even = append(even, x)
	}
	if len(even) == 0 {
		even = []int{max(s.Lx, s.Lx+(s.Width-tapW)/2)}
	}
	if !checker {
		return even, even
	}
	for x := s.Lx + step/2 + step; x+tapW <= s.URX(); x += rowStep {
		odd = append(odd, x)
	}
	if len(odd) == 0 {
		odd = even
	}
	return even, odd
}

// hasRoom reports whether the row can still absorb a service cell of width w.
func hasRoom(ckt *circuit.Circuit, row *rowpack.GriddedRow, w int) bool {
	used := 0
	for _, br := range row.Regions {
		used += ckt.Blocks[br.BlockID].W
	}
	return used+w <= row.Width
}

// addService appends one fixed service instance aligned to the row's well
// boundary and registers it as a row member.
func addService(ckt *circuit.Circuit, row *rowpack.GriddedRow, typeID, x int, name string) int {
	t := &ckt.Types[typeID]
	lly := row.Ly
	if w := t.Well; w != nil {
		if row.OrientN {
			lly += row.PHeight - w.PHeight(0)
		} else {
			lly += row.NHeight - w.NHeight(0)
		}
	}
	id, _ := ckt.AddBlock(name, typeID, float64(x), float64(lly), circuit.Fixed)
	if row.OrientN {
		ckt.Blocks[id].Orient = geom.N
	} else {
		ckt.Blocks[id].Orient = geom.FS
	}
	row.Regions = append(row.Regions, rowpack.BlockRegion{BlockID: id})
	row.UsedSize += t.Width
	return id
}

// rebuildSegments carves the service-cell spans out of the row and deals the
// resident cell regions to the nearest segment with room. Returns false when
// some cell found no segment.
func rebuildSegments(ckt *circuit.Circuit, row *rowpack.GriddedRow, blockages []geom.Seg) bool {
	type resident struct {
		br rowpack.BlockRegion
		x  float64
	}
	var cells []resident
	for _, br := range row.Regions {
		if ckt.Blocks[br.BlockID].IsFixed() {
			continue
		}
		cells = append(cells, resident{br: br, x: ckt.Blocks[br.BlockID].LLX})
	}
	sort.SliceStable(cells, func(a, b int) bool {
		if cells[a].x != cells[b].x {
			return cells[a].x < cells[b].x
		}
		return cells[a].br.BlockID < cells[b].br.BlockID
	})

	free := geom.SubtractSegs(row.Lx, row.Lx+row.Width, blockages)
	segs := make([]rowpack.RowSegment, len(free))
	remaining := make([]int, len(free))
	for i, f := range free {
		segs[i] = rowpack.RowSegment{Lo: f.Lo, Hi: f.Hi}
		remaining[i] = f.Span()
	}

	ok := true
	for _, c := range cells {
		w := ckt.Blocks[c.br.BlockID].W
		best := -1
		bestDist := math.Inf(1)
		for i := range segs {
			if remaining[i] < w {
				continue
			}
			d := segDistance(segs[i].Lo, segs[i].Hi, c.x, w)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		if best < 0 {
			ok = false
			continue
		}
		segs[best].Regions = append(segs[best].Regions, c.br)
		segs[best].InitX = append(segs[best].InitX, c.x)
		remaining[best] -= w
	}
	row.Segments = segs
	return ok
}

// segDistance measures how far a cell at x must move to fit inside [lo, hi).
func segDistance(lo, hi int, x float64, w int) float64 {
	if x < float64(lo) {
		return float64(lo) - x
	}
	if x+float64(w) > float64(hi) {
		return x + float64(w) - float64(hi)
	}
	return 0
}

// capTypesFor synthesizes (once per well-height pair) the pre- and post-cap
// types matching the row's wells.
func capTypesFor(ckt *circuit.Circuit, cache map[[2]int][2]int, row *rowpack.GriddedRow) (pre, post int, err error) {
	key := [2]int{row.PHeight, row.NHeight}
	if t, ok := cache[key]; ok {
		return t[0], t[1], nil
	}
	preW := ckt.Types[ckt.Tech.PreEndCapID].Width
	postW := ckt.Types[ckt.Tech.PostEndCapID].Width
	pre, err = addCapType(ckt, fmt.Sprintf("__endcap_pre_p%d_n%d", key[0], key[1]), preW, key[0], key[1])
	if err != nil {
		return 0, 0, err
	}
	post, err = addCapType(ckt, fmt.Sprintf("__endcap_post_p%d_n%d", key[0], key[1]), postW, key[0], key[1])
	if err != nil {
		return 0, 0, err
	}
	cache[key] = [2]int{pre, post}
	return pre, post, nil
}

func addCapType(ckt *circuit.Circuit, name string, w, p, n int) (int, error) {
	return ckt.AddType(circuit.BlockType{
		Name: name, Width: w, Height: p + n,
		Well: &circuit.MultiWell{
			PRects: []geom.Rect{{LLX: 0, LLY: 0, URX: w, URY: p}},
			NRects: []geom.Rect{{LLX: 0, LLY: p, URX: w, URY: p + n}},
		},
	})
}
