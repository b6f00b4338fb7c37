package netmodel

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/wellplace/cg"
	"github.com/katalvlaran/wellplace/circuit"
)

// Builder turns the circuit's nets into quadratic systems, one axis at a
// time. Construct it once per placement and reuse it for every rebuild; the
// star-HPWL pair cache and the decay length are computed at construction.
type Builder struct {
	ckt  *circuit.Circuit
	opts Options

	decayLen float64
	pairs    []pairEdge
	termsX   []pairTerm
	termsY   []pairTerm
}

// NewBuilder prepares a builder over ckt. Options are normalized against the
// circuit (epsilon guards, center weight, ignore threshold).
func NewBuilder(ckt *circuit.Circuit, opts Options) *Builder {
	opts.normalize(ckt)
	b := &Builder{ckt: ckt, opts: opts}
	b.decayLen = opts.DecayFactor * ckt.AveMovBlkHeight()
	if b.decayLen <= 0 {
		b.decayLen = 1
	}
	if opts.Model == StarHPWL {
		b.initPairCache()
	}
	return b
}

// Options returns the normalized options in effect.
func (bd *Builder) Options() Options { return bd.opts }

func (bd *Builder) initPairCache() {
	for netID := range bd.ckt.Nets {
		n := &bd.ckt.Nets[netID]
		if bd.skipNet(n) {
			continue
		}
		driverBlk := n.Pins[0].BlockID
		for l := 1; l < len(n.Pins); l++ {
			if n.Pins[l].BlockID == driverBlk {
				continue
			}
			bd.pairs = append(bd.pairs, pairEdge{netID: netID, driver: 0, load: l})
		}
	}
	bd.termsX = make([]pairTerm, len(bd.pairs))
	bd.termsY = make([]pairTerm, len(bd.pairs))
}

func (bd *Builder) skipNet(n *circuit.Net) bool {
	return n.PinCount() <= 1 || n.PinCount() >= bd.opts.IgnoreThreshold
}

// axisView narrows the circuit to one coordinate.
type axisView struct {
	isX    bool
	eps    float64
	lo, hi float64
}

func (bd *Builder) axisX() axisView {
	return axisView{
		isX: true,
		eps: bd.opts.WidthEpsilon,
		lo:  float64(bd.ckt.Region.LLX),
		hi:  float64(bd.ckt.Region.URX),
	}
}

func (bd *Builder) axisY() axisView {
	return axisView{
		isX: false,
		eps: bd.opts.HeightEpsilon,
		lo:  float64(bd.ckt.Region.LLY),
		hi:  float64(bd.ckt.Region.URY),
	}
}

func (ax axisView) blockPos(b *circuit.Block) float64 {
	if ax.isX {
		return b.LLX
	}
	return b.LLY
}

func (ax axisView) blockSpan(b *circuit.Block) float64 {
	if ax.isX {
		return float64(b.W)
	}
	return float64(b.H)
}

func (ax axisView) pinPos(c *circuit.Circuit, n *circuit.Net, k int) float64 {
	x, y := c.PinPos(n, k)
	if ax.isX {
		return x
	}
	return y
}

func (ax axisView) pinOffset(c *circuit.Circuit, n *circuit.Net, k int) float64 {
	x, y := c.PinOffset(n, k)
	if ax.isX {
		return x
	}
	return y
}

func (ax axisView) extremes(n *circuit.Net) (minPin, maxPin int) {
	if ax.isX {
		return n.MinX, n.MaxX
	}
	return n.MinY, n.MaxY
}

// RefreshExtremes recomputes the cached min/max pin of every net on both
// axes, spreading nets across the configured worker count. Each net owns its
// cache fields, so the sweep is race-free and deterministic.
func (bd *Builder) RefreshExtremes() {
	nets := bd.ckt.Nets
	workers := bd.opts.NumThreads
	if workers <= 1 || len(nets) < 2*workers {
		for i := range nets {
			bd.ckt.UpdateMaxMinX(&nets[i])
			bd.ckt.UpdateMaxMinY(&nets[i])
		}
		return
	}
	var g errgroup.Group
	chunk := (len(nets) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(nets))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				bd.ckt.UpdateMaxMinX(&nets[i])
				bd.ckt.UpdateMaxMinY(&nets[i])
			}
			return nil
		})
	}
	_ = g.Wait() // workers return no errors
}

// BuildX assembles the x-axis system into tr and rhs. rhs must have one slot
// per block and is zeroed first.
func (bd *Builder) BuildX(tr *cg.Triplets, rhs []float64) {
	bd.build(tr, rhs, bd.axisX(), bd.termsX)
}

// BuildY assembles the y-axis system into tr and rhs.
func (bd *Builder) BuildY(tr *cg.Triplets, rhs []float64) {
	bd.build(tr, rhs, bd.axisY(), bd.termsY)
}

func (bd *Builder) build(tr *cg.Triplets, rhs []float64, ax axisView, terms []pairTerm) {
	tr.Reset()
	for i := range rhs {
		rhs[i] = 0
	}
	for i := range bd.ckt.Nets {
		n := &bd.ckt.Nets[i]
		if ax.isX {
			bd.ckt.UpdateMaxMinX(n)
		} else {
			bd.ckt.UpdateMaxMinY(n)
		}
	}
	switch bd.opts.Model {
	case B2B:
		bd.buildB2B(tr, rhs, ax)
	case Star:
		bd.buildStar(tr, rhs, ax)
	case HPWL:
		bd.buildHPWL(tr, rhs, ax)
	case StarHPWL:
		bd.buildStarHPWL(tr, rhs, ax, terms)
	}
	bd.addBoundaryTerms(tr, rhs, ax)
}

// addSpring emits the two-pin spring between pin k and pin e of net n with
// stiffness w. Fixed endpoints fold into the right-hand side only.
func (bd *Builder) addSpring(tr *cg.Triplets, rhs []float64, n *circuit.Net, k, e int, w float64, ax axisView) {
	c := bd.ckt
	bi := n.Pins[k].BlockID
	be := n.Pins[e].BlockID
	movI := c.Blocks[bi].IsMovable()
	movE := c.Blocks[be].IsMovable()
	switch {
	case !movI && movE:
		tr.Add(be, be, w)
		rhs[be] += (ax.pinPos(c, n, k) - ax.pinOffset(c, n, e)) * w
	case movI && !movE:
		tr.Add(bi, bi, w)
		rhs[bi] += (ax.pinPos(c, n, e) - ax.pinOffset(c, n, k)) * w
	case movI && movE:
		tr.Add(bi, bi, w)
		tr.Add(be, be, w)
		tr.Add(bi, be, -w)
		tr.Add(be, bi, -w)
		od := (ax.pinOffset(c, n, e) - ax.pinOffset(c, n, k)) * w
		rhs[bi] += od
		rhs[be] -= od
	}
}

func (bd *Builder) buildB2B(tr *cg.Triplets, rhs []float64, ax axisView) {
	c := bd.ckt
	for i := range c.Nets {
		n := &c.Nets[i]
		if bd.skipNet(n) {
			continue
		}
		minPin, maxPin := ax.extremes(n)
		maxBlk := n.Pins[maxPin].BlockID
		minBlk := n.Pins[minPin].BlockID
		maxPos := ax.pinPos(c, n, maxPin)
		minPos := ax.pinPos(c, n, minPin)
		for k := range n.Pins {
			blk := n.Pins[k].BlockID
			pos := ax.pinPos(c, n, k)
			if blk != maxBlk {
				w := n.InvP / (math.Abs(pos-maxPos) + ax.eps)
				bd.addSpring(tr, rhs, n, k, maxPin, w, ax)
			}
			if blk != maxBlk && blk != minBlk {
				w := n.InvP / (math.Abs(pos-minPos) + ax.eps)
				bd.addSpring(tr, rhs, n, k, minPin, w, ax)
			}
		}
	}
}

func (bd *Builder) buildStar(tr *cg.Triplets, rhs []float64, ax axisView) {
	c := bd.ckt
	for i := range c.Nets {
		n := &c.Nets[i]
		if bd.skipNet(n) {
			continue
		}
		driverBlk := n.Pins[0].BlockID
		driverPos := ax.pinPos(c, n, 0)
		for k := 1; k < len(n.Pins); k++ {
			if n.Pins[k].BlockID == driverBlk {
				continue
			}
			d := math.Abs(ax.pinPos(c, n, k) - driverPos)
			w := n.InvP / (d + ax.eps) * bd.decayAdjust(d)
			bd.addSpring(tr, rhs, n, k, 0, w, ax)
		}
	}
}

func (bd *Builder) buildHPWL(tr *cg.Triplets, rhs []float64, ax axisView) {
	c := bd.ckt
	for i := range c.Nets {
		n := &c.Nets[i]
		if bd.skipNet(n) {
			continue
		}
		minPin, maxPin := ax.extremes(n)
		if n.Pins[minPin].BlockID == n.Pins[maxPin].BlockID {
			continue
		}
		d := math.Abs(ax.pinPos(c, n, maxPin) - ax.pinPos(c, n, minPin))
		w := n.InvP / (d + ax.eps)
		bd.addSpring(tr, rhs, n, minPin, maxPin, w, ax)
	}
}

// decayAdjust dampens long springs: base + adjust·(1 − e^(−d/decayLen)).
func (bd *Builder) decayAdjust(d float64) float64 {
	return bd.opts.BaseFactor + bd.opts.AdjustFactor*(1-math.Exp(-d/bd.decayLen))
}

func (bd *Builder) buildStarHPWL(tr *cg.Triplets, rhs []float64, ax axisView, terms []pairTerm) {
	c := bd.ckt
	workers := bd.opts.NumThreads
	sweep := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			terms[i] = bd.pairTermFor(bd.pairs[i], ax)
		}
	}
	if workers <= 1 || len(bd.pairs) < 2*workers {
		sweep(0, len(bd.pairs))
	} else {
		var g errgroup.Group
		chunk := (len(bd.pairs) + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := min(lo+chunk, len(bd.pairs))
			if lo >= hi {
				break
			}
			g.Go(func() error { sweep(lo, hi); return nil })
		}
		_ = g.Wait()
	}
	// fold in pair order so the assembled system is deterministic
	for i, pe := range bd.pairs {
		n := &c.Nets[pe.netID]
		driverBlk := n.Pins[pe.driver].BlockID
		loadBlk := n.Pins[pe.load].BlockID
		t := &terms[i]
		if t.e00 != 0 {
			tr.Add(driverBlk, driverBlk, t.e00)
		}
		if t.e11 != 0 {
			tr.Add(loadBlk, loadBlk, t.e11)
		}
		if t.e01 != 0 {
			tr.Add(driverBlk, loadBlk, t.e01)
			tr.Add(loadBlk, driverBlk, t.e01)
		}
		rhs[driverBlk] += t.b0
		rhs[loadBlk] += t.b1
	}
}

// pairTermFor computes one driver-load contribution of the star-HPWL model.
// The spring is rescaled by the load's share of the net span on the driver's
// side, so pins near the net boundary pull harder.
func (bd *Builder) pairTermFor(pe pairEdge, ax axisView) pairTerm {
	c := bd.ckt
	n := &c.Nets[pe.netID]
	minPin, maxPin := ax.extremes(n)
	driverBlk := n.Pins[pe.driver].BlockID
	loadBlk := n.Pins[pe.load].BlockID
	driverPos := ax.pinPos(c, n, pe.driver)
	loadPos := ax.pinPos(c, n, pe.load)
	minPos := ax.pinPos(c, n, minPin)
	maxPos := ax.pinPos(c, n, maxPin)

	d := math.Abs(loadPos - driverPos)
	w := n.InvP / (d + ax.eps) * bd.decayAdjust(d)

	var span float64
	switch {
	case driverBlk == n.Pins[maxPin].BlockID:
		span = (driverPos - loadPos) / (driverPos - minPos + ax.eps)
	case driverBlk == n.Pins[minPin].BlockID:
		span = (loadPos - driverPos) / (maxPos - driverPos + ax.eps)
	case loadPos > driverPos:
		span = (loadPos - driverPos) / (maxPos - driverPos + ax.eps)
	default:
		span = (driverPos - loadPos) / (driverPos - minPos + ax.eps)
	}
	w *= span

	var t pairTerm
	movD := c.Blocks[driverBlk].IsMovable()
	movL := c.Blocks[loadBlk].IsMovable()
	driverOff := ax.pinOffset(c, n, pe.driver)
	loadOff := ax.pinOffset(c, n, pe.load)
	switch {
	case !movL && movD:
		t.e00 = w
		t.b0 = (loadPos - driverOff) * w
	case movL && !movD:
		t.e11 = w
		t.b1 = (driverPos - loadOff) * w
	case movL && movD:
		t.e00 = w
		t.e11 = w
		t.e01 = -w
		od := (driverOff - loadOff) * w
		t.b1 = od
		t.b0 = -od
	}
	return t
}

// addBoundaryTerms pins fixed blocks with a unit diagonal and pulls movable
// blocks that drifted outside the region toward its center.
func (bd *Builder) addBoundaryTerms(tr *cg.Triplets, rhs []float64, ax axisView) {
	c := bd.ckt
	cw := bd.opts.CenterWeight
	center := (ax.lo + ax.hi) / 2 * cw
	for i := range c.Blocks {
		b := &c.Blocks[i]
		if b.IsFixed() {
			tr.Add(i, i, 1)
			rhs[i] = ax.blockPos(b)
			continue
		}
		pos := ax.blockPos(b)
		if pos < ax.lo || pos+ax.blockSpan(b) > ax.hi {
			tr.Add(i, i, cw)
			rhs[i] += center
		}
	}
}

// AddAnchorsX augments an assembled x-axis system with per-block springs to
// anchor positions, stiffness alpha/(|pos − anchor| + ε). Fixed blocks are
// untouched.
func (bd *Builder) AddAnchorsX(tr *cg.Triplets, rhs []float64, anchor []float64, alpha float64) {
	bd.addAnchors(tr, rhs, anchor, alpha, bd.axisX())
}

// AddAnchorsY is the y-axis counterpart of AddAnchorsX.
func (bd *Builder) AddAnchorsY(tr *cg.Triplets, rhs []float64, anchor []float64, alpha float64) {
	bd.addAnchors(tr, rhs, anchor, alpha, bd.axisY())
}

func (bd *Builder) addAnchors(tr *cg.Triplets, rhs []float64, anchor []float64, alpha float64, ax axisView) {
	c := bd.ckt
	for i := range c.Blocks {
		b := &c.Blocks[i]
		if b.IsFixed() {
			continue
		}
		w := alpha / (math.Abs(ax.blockPos(b)-anchor[i]) + ax.eps)
		tr.Add(i, i, w)
		rhs[i] += anchor[i] * w
	}
}
