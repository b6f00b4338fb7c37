package simpl

import (
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/wellplace/bisect"
	"github.com/katalvlaran/wellplace/cg"
	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/gridbin"
	"github.com/katalvlaran/wellplace/netmodel"
)

// Placer runs the SimPL/POLAR global-placement loop over one circuit.
type Placer struct {
	ckt  *circuit.Circuit
	opts Options
	bd   *netmodel.Builder
	grid *gridbin.Grid

	trX, trY cg.Triplets
	bX, bY   []float64
	vX, vY   []float64

	anchorX, anchorY []float64
	savedX, savedY   []float64
	alpha            float64
}

// New prepares a placer. The grid-bin matrix and net-model builder are
// constructed once and reused across iterations.
func New(ckt *circuit.Circuit, opts Options) (*Placer, error) {
	if ckt == nil {
		return nil, ErrNilCircuit
	}
	opts.normalize()
	grid, err := gridbin.NewGrid(ckt, opts.Grid)
	if err != nil {
		return nil, err
	}
	n := len(ckt.Blocks)
	p := &Placer{
		ckt:     ckt,
		opts:    opts,
		bd:      netmodel.NewBuilder(ckt, opts.Net),
		grid:    grid,
		bX:      make([]float64, n),
		bY:      make([]float64, n),
		vX:      make([]float64, n),
		vY:      make([]float64, n),
		anchorX: make([]float64, n),
		anchorY: make([]float64, n),
		savedX:  make([]float64, n),
		savedY:  make([]float64, n),
	}
	return p, nil
}

// Place runs the outer loop until convergence, MaxIter or cancellation and
// leaves the final look-ahead-legalized positions on the circuit's blocks.
func (p *Placer) Place() (Result, error) {
	res := Result{}
	if len(p.ckt.Nets) == 0 {
		// nothing pulls the cells anywhere; spread them and finish
		p.randomInit()
		res.HPWL = p.lookAheadLegalize()
		res.Converged = true
		return res, nil
	}

	p.randomInit()
	p.alpha = p.opts.AlphaInit

	lb := p.quadraticPlacement(false)
	res.LowerBound = append(res.LowerBound, lb)
	p.saveLocations()
	ub := p.lookAheadLegalize()
	res.UpperBound = append(res.UpperBound, ub)
	if p.opts.Observer != nil {
		p.opts.Observer.OnIteration(0, lb, ub)
	}

	for k := 1; k < p.opts.MaxIter; k++ {
		if err := p.opts.Ctx.Err(); err != nil {
			res.Iterations = k
			return res, err
		}
		// legalized positions become anchors; the previous quadratic
		// solution is restored as the warm start
		p.swapAnchors()

		lb = p.quadraticPlacement(true)
		res.LowerBound = append(res.LowerBound, lb)
		p.saveLocations()

		if err := p.opts.Ctx.Err(); err != nil {
			res.Iterations = k
			return res, err
		}
		ub = p.lookAheadLegalize()
		res.UpperBound = append(res.UpperBound, ub)
		res.Iterations = k
		if p.opts.Observer != nil {
			p.opts.Observer.OnIteration(k, lb, ub)
		}

		if p.isConverged(res.LowerBound, res.UpperBound) {
			res.Converged = true
			break
		}
		p.alpha *= p.opts.AlphaGrowth
	}
	res.HPWL = p.ckt.HPWL()
	return res, nil
}

// randomInit scatters movable blocks uniformly over the region with the
// configured seed; fixed blocks stay put.
func (p *Placer) randomInit() {
	rng := rand.New(rand.NewSource(p.opts.Seed))
	region := p.ckt.Region
	for i := range p.ckt.Blocks {
		b := &p.ckt.Blocks[i]
		if !b.IsMovable() {
			continue
		}
		spanX := float64(region.Width() - b.W)
		spanY := float64(region.Height() - b.H)
		if spanX < 0 {
			spanX = 0
		}
		if spanY < 0 {
			spanY = 0
		}
		b.LLX = float64(region.LLX) + rng.Float64()*spanX
		b.LLY = float64(region.LLY) + rng.Float64()*spanY
		b.Status = circuit.Placed
	}
}

// CenterInit places every movable block at the region center; an alternative
// to the random start for tiny designs.
func (p *Placer) CenterInit() {
	region := p.ckt.Region
	cx := float64(region.LLX+region.URX) / 2
	cy := float64(region.LLY+region.URY) / 2
	for i := range p.ckt.Blocks {
		b := &p.ckt.Blocks[i]
		if b.IsMovable() {
			b.SetCenter(cx, cy)
			b.Status = circuit.Placed
		}
	}
}

func (p *Placer) saveLocations() {
	for i := range p.ckt.Blocks {
		p.savedX[i] = p.ckt.Blocks[i].LLX
		p.savedY[i] = p.ckt.Blocks[i].LLY
	}
}

// swapAnchors records the current (legalized) locations as anchors and
// restores the saved quadratic solution onto the blocks.
func (p *Placer) swapAnchors() {
	for i := range p.ckt.Blocks {
		b := &p.ckt.Blocks[i]
		p.anchorX[i], b.LLX = b.LLX, p.savedX[i]
		p.anchorY[i], b.LLY = b.LLY, p.savedY[i]
	}
}

// quadraticPlacement alternates net-model rebuilds and CG solves per axis
// until the wirelength series flattens or oscillates, then returns the
// resulting weighted HPWL (the lower bound).
func (p *Placer) quadraticPlacement(withAnchor bool) float64 {
	var history []float64
	for it := 0; it < p.opts.B2BUpdateMaxIter; it++ {
		p.solveBothAxes(withAnchor)
		hpwl := p.ckt.HPWL()
		history = append(history, hpwl)
		if IsSeriesConverging(history, 3, p.opts.CGStopCriterion) ||
			IsSeriesOscillating(history, 3) {
			break
		}
	}
	return history[len(history)-1]
}

func (p *Placer) solveBothAxes(withAnchor bool) {
	n := len(p.ckt.Blocks)
	for i := 0; i < n; i++ {
		p.vX[i] = p.ckt.Blocks[i].LLX
		p.vY[i] = p.ckt.Blocks[i].LLY
	}

	solveX := func() error {
		p.bd.BuildX(&p.trX, p.bX)
		if withAnchor {
			p.bd.AddAnchorsX(&p.trX, p.bX, p.anchorX, p.alpha)
		}
		a, err := cg.BuildCSR(n, &p.trX)
		if err != nil {
			return err
		}
		_, err = cg.Solve(a, p.bX, p.vX, p.opts.CGMaxIter, p.opts.CGTolerance)
		return err
	}
	solveY := func() error {
		p.bd.BuildY(&p.trY, p.bY)
		if withAnchor {
			p.bd.AddAnchorsY(&p.trY, p.bY, p.anchorY, p.alpha)
		}
		a, err := cg.BuildCSR(n, &p.trY)
		if err != nil {
			return err
		}
		_, err = cg.Solve(a, p.bY, p.vY, p.opts.CGMaxIter, p.opts.CGTolerance)
		return err
	}

	if p.opts.NumThreads >= 2 {
		var g errgroup.Group
		g.Go(solveX)
		g.Go(solveY)
		_ = g.Wait() // indices were validated at assembly; solves cannot fail
	} else {
		_ = solveX()
		_ = solveY()
	}

	for i := 0; i < n; i++ {
		b := &p.ckt.Blocks[i]
		if b.IsMovable() {
			b.LLX = p.vX[i]
			b.LLY = p.vY[i]
		}
	}
}

// lookAheadLegalize spreads every overfilled cluster and returns the
// resulting weighted HPWL (the upper bound).
func (p *Placer) lookAheadLegalize() float64 {
	p.grid.ClearFlags()
	for {
		p.grid.UpdateState()
		clusters := p.grid.Clusters()
		if len(clusters) == 0 {
			break
		}
		box := p.grid.ExpandCluster(clusters[0])
		bisect.Spread(p.ckt, p.grid, box)
	}
	return p.ckt.HPWL()
}

func (p *Placer) isConverged(lower, upper []float64) bool {
	switch p.opts.Criterion {
	case ConvergePolar:
		lb := lower[len(lower)-1]
		ub := upper[len(upper)-1]
		return lb > 0 && lb < ub && ub/lb-1 < p.opts.PolarCriterion
	default:
		if len(lower) <= 10 {
			return false
		}
		tenthGap := upper[9] - lower[9]
		lastGap := upper[len(upper)-1] - lower[len(lower)-1]
		if tenthGap <= 0 {
			return true
		}
		ratio := lastGap / tenthGap
		if ratio < 0.1 {
			return true
		}
		if ratio < 0.25 {
			return IsSeriesConverging(upper, 3, p.opts.SimPLCriterion)
		}
		return false
	}
}

// CheckAndShift recenters a fully movable design: without fixed blocks the
// quadratic solution is translation-invariant and may hug a boundary, which
// starves the legalizer of slack on that side. The placement is shifted so
// one tenth of the x-margin sits left and half the y-margin sits below.
func (p *Placer) CheckAndShift() {
	for i := range p.ckt.Blocks {
		if p.ckt.Blocks[i].IsFixed() {
			return
		}
	}
	if len(p.ckt.Blocks) == 0 {
		return
	}
	left, bottom := p.ckt.Blocks[0].LLX, p.ckt.Blocks[0].LLY
	right, top := p.ckt.Blocks[0].URX(), p.ckt.Blocks[0].URY()
	for i := range p.ckt.Blocks {
		b := &p.ckt.Blocks[i]
		left = min(left, b.LLX)
		right = max(right, b.URX())
		bottom = min(bottom, b.LLY)
		top = max(top, b.URY())
	}
	region := p.ckt.Region
	marginX := float64(region.Width()) - (right - left)
	marginY := float64(region.Height()) - (top - bottom)
	dx := float64(region.LLX) + marginX/10 - left
	dy := float64(region.LLY) + marginY/2 - bottom
	for i := range p.ckt.Blocks {
		p.ckt.Blocks[i].LLX += dx
		p.ckt.Blocks[i].LLY += dy
	}
}
