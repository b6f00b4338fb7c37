package gridbin

import (
	"math"
	"sort"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

// Grid is the bin matrix over the placement region.
type Grid struct {
	ckt  *circuit.Circuit
	opts Options

	BinW, BinH int
	CntX, CntY int
	Bins       [][]Bin // indexed [x][y]

	// wsLUT[x+1][y+1] = Σ white space of bins [0..x]×[0..y]
	wsLUT [][]int64
}

// NewGrid builds the bin matrix, assigns fixed macros, computes white space
// and the summed-area table. Bin side length is
// round(√(CellsPerBin·avgMovArea/FillingRate)), clamped to the region.
// Complexity: O(bins + macros·covered-bins).
func NewGrid(ckt *circuit.Circuit, opts Options) (*Grid, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	avg := ckt.AveMovBlkArea()
	if avg <= 0 {
		return nil, ErrNoMovableCells
	}
	side := int(math.Round(math.Sqrt(float64(opts.CellsPerBin) * avg / opts.FillingRate)))
	if side < 1 {
		side = 1
	}
	region := ckt.Region
	if side > region.Width() {
		side = region.Width()
	}
	if side > region.Height() {
		side = region.Height()
	}
	g := &Grid{
		ckt:  ckt,
		opts: opts,
		BinW: side,
		BinH: side,
		CntX: (region.Width() + side - 1) / side,
		CntY: (region.Height() + side - 1) / side,
	}

	g.Bins = make([][]Bin, g.CntX)
	for i := 0; i < g.CntX; i++ {
		g.Bins[i] = make([]Bin, g.CntY)
		for j := 0; j < g.CntY; j++ {
			r := geom.Rect{
				LLX: region.LLX + i*side,
				LLY: region.LLY + j*side,
				URX: region.LLX + (i+1)*side,
				URY: region.LLY + (j+1)*side,
			}
			// the last row/column stretches to the region boundary
			if i == g.CntX-1 {
				r.URX = region.URX
			}
			if j == g.CntY-1 {
				r.URY = region.URY
			}
			g.Bins[i][j] = Bin{Rect: r, WhiteSpace: r.Area()}
		}
	}

	g.assignMacros()
	g.buildWhiteSpaceLUT()
	return g, nil
}

// Ckt returns the circuit the grid indexes.
func (g *Grid) Ckt() *circuit.Circuit { return g.ckt }

// TargetFillingRate returns the density target overfill is judged against.
func (g *Grid) TargetFillingRate() float64 { return g.opts.FillingRate }

func (g *Grid) assignMacros() {
	region := g.ckt.Region
	for id := range g.ckt.Blocks {
		b := &g.ckt.Blocks[id]
		if b.IsMovable() {
			continue
		}
		r := geom.Rect{
			LLX: int(math.Floor(b.LLX)), LLY: int(math.Floor(b.LLY)),
			URX: int(math.Ceil(b.URX())), URY: int(math.Ceil(b.URY())),
		}
		if !r.Overlaps(region) {
			continue
		}
		loX := g.clampX((r.LLX - region.LLX) / g.BinW)
		hiX := g.clampX((r.URX - region.LLX) / g.BinW)
		loY := g.clampY((r.LLY - region.LLY) / g.BinH)
		hiY := g.clampY((r.URY - region.LLY) / g.BinH)
		for i := loX; i <= hiX; i++ {
			for j := loY; j <= hiY; j++ {
				bin := &g.Bins[i][j]
				ov := bin.Rect.OverlapArea(r)
				if ov <= 0 {
					continue
				}
				bin.Macros = append(bin.Macros, id)
				bin.WhiteSpace -= ov
				if bin.WhiteSpace < 1 {
					bin.WhiteSpace = 0
					bin.AllTerminal = true
				}
			}
		}
	}
}

func (g *Grid) buildWhiteSpaceLUT() {
	g.wsLUT = make([][]int64, g.CntX+1)
	for i := 0; i <= g.CntX; i++ {
		g.wsLUT[i] = make([]int64, g.CntY+1)
	}
	for i := 1; i <= g.CntX; i++ {
		for j := 1; j <= g.CntY; j++ {
			g.wsLUT[i][j] = g.Bins[i-1][j-1].WhiteSpace +
				g.wsLUT[i-1][j] + g.wsLUT[i][j-1] - g.wsLUT[i-1][j-1]
		}
	}
}

// WhiteSpace returns the summed white space over the inclusive bin range.
func (g *Grid) WhiteSpace(ll, ur Index) int64 {
	return g.wsLUT[ur.X+1][ur.Y+1] - g.wsLUT[ll.X][ur.Y+1] -
		g.wsLUT[ur.X+1][ll.Y] + g.wsLUT[ll.X][ll.Y]
}

func (g *Grid) clampX(i int) int { return min(max(i, 0), g.CntX-1) }
func (g *Grid) clampY(j int) int { return min(max(j, 0), g.CntY-1) }

// BinAt returns the bin index containing point (x, y), clamped to the grid.
func (g *Grid) BinAt(x, y float64) Index {
	return Index{
		X: g.clampX(int(math.Floor((x - float64(g.ckt.Region.LLX)) / float64(g.BinW)))),
		Y: g.clampY(int(math.Floor((y - float64(g.ckt.Region.LLY)) / float64(g.BinH)))),
	}
}

// ClearFlags resets the per-pass Placed marks.
func (g *Grid) ClearFlags() {
	for i := range g.Bins {
		for j := range g.Bins[i] {
			g.Bins[i][j].Placed = false
		}
	}
}

// UpdateState re-buckets every movable cell by center and recomputes the
// over-fill flags:
//   - an all-terminal bin with any cells is overfilled
//   - a bin whose cell area exceeds target · white space is overfilled
//   - a bin where any cell overlaps any resident macro is overfilled
func (g *Grid) UpdateState() {
	for i := range g.Bins {
		for j := range g.Bins[i] {
			bin := &g.Bins[i][j]
			bin.Cells = bin.Cells[:0]
			bin.CellArea = 0
			bin.OverFill = false
		}
	}
	for id := range g.ckt.Blocks {
		b := &g.ckt.Blocks[id]
		if !b.IsMovable() {
			continue
		}
		idx := g.BinAt(b.X(), b.Y())
		bin := &g.Bins[idx.X][idx.Y]
		bin.Cells = append(bin.Cells, id)
		bin.CellArea += b.Area()
	}
	for i := range g.Bins {
		for j := range g.Bins[i] {
			bin := &g.Bins[i][j]
			if bin.Placed {
				continue
			}
			if bin.AllTerminal {
				bin.OverFill = len(bin.Cells) > 0
			} else if bin.FillingRate() > g.opts.FillingRate {
				bin.OverFill = true
			}
			if !bin.OverFill {
			overlapScan:
				for _, cid := range bin.Cells {
					for _, mid := range bin.Macros {
						if g.ckt.Blocks[cid].Overlaps(&g.ckt.Blocks[mid]) {
							bin.OverFill = true
							break overlapScan
						}
					}
				}
			}
		}
	}
}

var neighborOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Clusters groups overfilled, not-yet-placed bins by BFS over 8-adjacency,
// capping each cluster at ClusterUpperSize bins. The result is sorted by
// total cell area, largest first (ties by lowest bin index for determinism).
func (g *Grid) Clusters() []Cluster {
	visited := make([][]bool, g.CntX)
	for i := range visited {
		visited[i] = make([]bool, g.CntY)
	}
	var clusters []Cluster
	for i := 0; i < g.CntX; i++ {
		for j := 0; j < g.CntY; j++ {
			bin := &g.Bins[i][j]
			if visited[i][j] || !bin.OverFill || bin.Placed {
				continue
			}
			cl := Cluster{}
			queue := []Index{{i, j}}
			visited[i][j] = true
			for len(queue) > 0 && len(cl.Bins) < g.opts.ClusterUpperSize {
				cur := queue[0]
				queue = queue[1:]
				cl.Bins = append(cl.Bins, cur)
				cl.CellArea += g.Bins[cur.X][cur.Y].CellArea
				cl.WhiteSpace += g.Bins[cur.X][cur.Y].WhiteSpace
				for _, d := range neighborOffsets {
					nx, ny := cur.X+d[0], cur.Y+d[1]
					if nx < 0 || nx >= g.CntX || ny < 0 || ny >= g.CntY {
						continue
					}
					nb := &g.Bins[nx][ny]
					if !visited[nx][ny] && nb.OverFill && !nb.Placed {
						visited[nx][ny] = true
						queue = append(queue, Index{nx, ny})
					}
				}
			}
			clusters = append(clusters, cl)
		}
	}
	sort.SliceStable(clusters, func(a, b int) bool {
		if clusters[a].CellArea != clusters[b].CellArea {
			return clusters[a].CellArea > clusters[b].CellArea
		}
		ia, ib := clusters[a].Bins[0], clusters[b].Bins[0]
		if ia.X != ib.X {
			return ia.X < ib.X
		}
		return ia.Y < ib.Y
	})
	return clusters
}

// ExpandCluster grows the cluster's bounding box one side at a time until
// the contained cell area fits under target density, or the box covers the
// whole grid. Bins of the final box are marked Placed and its movable cells
// are collected in id order.
func (g *Grid) ExpandCluster(cl Cluster) Box {
	ll := Index{X: g.CntX - 1, Y: g.CntY - 1}
	ur := Index{}
	for _, idx := range cl.Bins {
		ll.X = min(ll.X, idx.X)
		ll.Y = min(ll.Y, idx.Y)
		ur.X = max(ur.X, idx.X)
		ur.Y = max(ur.Y, idx.Y)
	}

	side := 0
	for {
		ws := g.WhiteSpace(ll, ur)
		area := g.boxCellArea(ll, ur)
		if area <= g.opts.FillingRate*float64(max(ws, 1)) {
			break
		}
		if ll.X == 0 && ll.Y == 0 && ur.X == g.CntX-1 && ur.Y == g.CntY-1 {
			break
		}
		// grow one side per step, round-robin, skipping exhausted sides
		for tries := 0; tries < 4; tries++ {
			grown := false
			switch side % 4 {
			case 0:
				if ll.X > 0 {
					ll.X--
					grown = true
				}
			case 1:
				if ur.X < g.CntX-1 {
					ur.X++
					grown = true
				}
			case 2:
				if ll.Y > 0 {
					ll.Y--
					grown = true
				}
			case 3:
				if ur.Y < g.CntY-1 {
					ur.Y++
					grown = true
				}
			}
			side++
			if grown {
				break
			}
		}
	}

	box := Box{
		LL: ll,
		UR: ur,
		Rect: geom.Rect{
			LLX: g.Bins[ll.X][ll.Y].Rect.LLX,
			LLY: g.Bins[ll.X][ll.Y].Rect.LLY,
			URX: g.Bins[ur.X][ur.Y].Rect.URX,
			URY: g.Bins[ur.X][ur.Y].Rect.URY,
		},
		WhiteSpace: g.WhiteSpace(ll, ur),
	}
	for i := ll.X; i <= ur.X; i++ {
		for j := ll.Y; j <= ur.Y; j++ {
			bin := &g.Bins[i][j]
			bin.Placed = true
			box.Cells = append(box.Cells, bin.Cells...)
			box.CellArea += bin.CellArea
		}
	}
	sort.Ints(box.Cells)
	return box
}

func (g *Grid) boxCellArea(ll, ur Index) float64 {
	area := 0.0
	for i := ll.X; i <= ur.X; i++ {
		for j := ll.Y; j <= ur.Y; j++ {
			area += g.Bins[i][j].CellArea
		}
	}
	return area
}

// MacrosIn returns the fixed-block ids overlapping the inclusive bin range,
// deduplicated, in ascending order.
func (g *Grid) MacrosIn(ll, ur Index) []int {
	seen := map[int]struct{}{}
	var ids []int
	for i := ll.X; i <= ur.X; i++ {
		for j := ll.Y; j <= ur.Y; j++ {
			for _, id := range g.Bins[i][j].Macros {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Ints(ids)
	return ids
}
