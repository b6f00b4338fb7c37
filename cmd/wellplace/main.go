// Command wellplace runs the gridded-cell analytical placement flow: global
// placement, then either the row-based Tetris legalizer or the well-aware
// gridded-row flow (stripes, row packing, consensus reordering, well-tap and
// end-cap insertion), and writes the final placement table.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/config"
	"github.com/katalvlaran/wellplace/gridbin"
	"github.com/katalvlaran/wellplace/netmodel"
	"github.com/katalvlaran/wellplace/observe"
	"github.com/katalvlaran/wellplace/rowlegal"
	"github.com/katalvlaran/wellplace/rowpack"
	"github.com/katalvlaran/wellplace/simpl"
	"github.com/katalvlaran/wellplace/stripe"
	"github.com/katalvlaran/wellplace/tetris"
	"github.com/katalvlaran/wellplace/welltap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cli struct {
	lef, def, cell, mcell string
	out                   string
	gridSpec              string
	density               float64
	noGlobal, noLegal     bool
	noIOPlace             bool
	wlgMode               string
	maxRowWidth           float64
	gbMaxIter             int
	nThreads, lgThreads   int
	noWellTap             bool
	confPath              string
	matlab                bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var c cli
	fs := flag.NewFlagSet("wellplace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.lef, "lef", "", "input technology file")
	fs.StringVar(&c.def, "def", "", "input design file")
	fs.StringVar(&c.cell, "cell", "", "single-well per-type cell spec")
	fs.StringVar(&c.mcell, "mcell", "", "multi-well per-type cell spec")
	fs.StringVar(&c.out, "o", "out", "output base name")
	fs.StringVar(&c.gridSpec, "g", "", "placement grid in microns, e.g. \"0.01 0.01\"")
	fs.Float64Var(&c.density, "d", 1, "target placement density in (0, 1]")
	fs.BoolVar(&c.noGlobal, "noglobal", false, "disable global placement")
	fs.BoolVar(&c.noLegal, "nolegal", false, "disable legalization")
	fs.BoolVar(&c.noIOPlace, "noioplace", false, "disable I/O-pin placement (accepted, external)")
	fs.StringVar(&c.wlgMode, "wlgmode", "strict", "rightmost stripe policy: strict|scavenge")
	fs.Float64Var(&c.maxRowWidth, "maxrowwidth", 0, "stripe width cap in microns")
	fs.IntVar(&c.gbMaxIter, "gbmaxit", 0, "global placement outer-iteration cap")
	fs.IntVar(&c.nThreads, "nthreads", 1, "threads in the global phase")
	fs.IntVar(&c.lgThreads, "lgthreads", 1, "threads in the legalization phase")
	fs.BoolVar(&c.noWellTap, "nowelltap", false, "skip well-tap insertion")
	fs.StringVar(&c.confPath, "conf", "", "tuning-constant YAML file")
	fs.BoolVar(&c.matlab, "matlab", false, "dump MATLAB patch tables")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if c.lef == "" || c.def == "" {
		fmt.Fprintln(stderr, "wellplace: -lef and -def are required")
		fs.Usage()
		return 1
	}
	if c.density <= 0 || c.density > 1 {
		fmt.Fprintln(stderr, "wellplace: density must be in (0, 1]")
		return 1
	}
	switch c.wlgMode {
	case "strict", "scavenge":
	default:
		fmt.Fprintf(stderr, "wellplace: unknown -wlgmode %q\n", c.wlgMode)
		return 1
	}

	params, err := config.Load(c.confPath)
	if err != nil {
		fmt.Fprintf(stderr, "wellplace: %v\n", err)
		return 1
	}
	if c.gbMaxIter > 0 {
		params.Global.MaxIter = c.gbMaxIter
	}

	ld := newLoader()
	for _, path := range []string{c.lef, c.cell, c.mcell, c.def} {
		if path == "" {
			continue
		}
		if err := ld.readFile(path); err != nil {
			fmt.Fprintf(stderr, "wellplace: %v\n", err)
			return 1
		}
	}
	if c.gridSpec != "" {
		if err := ld.setGrid(c.gridSpec); err != nil {
			fmt.Fprintf(stderr, "wellplace: %v\n", err)
			return 1
		}
	}
	ckt, err := ld.build()
	if err != nil {
		fmt.Fprintf(stderr, "wellplace: %v\n", err)
		return 1
	}

	if err := place(ckt, &c, params, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "wellplace: %v\n", err)
		return 1
	}

	if err := writeResult(ckt, c.out+".place"); err != nil {
		fmt.Fprintf(stderr, "wellplace: %v\n", err)
		return 1
	}
	if c.matlab {
		if err := dumpTables(ckt, c.out); err != nil {
			fmt.Fprintf(stderr, "wellplace: %v\n", err)
			return 1
		}
	}
	fmt.Fprintf(stdout, "final HPWL: %.4e\n", ckt.HPWL())
	return 0
}

func place(ckt *circuit.Circuit, c *cli, params config.Params, stdout, stderr io.Writer) error {
	ctx := context.Background()

	if !c.noGlobal {
		opts := globalOptions(c, params)
		p, err := simpl.New(ckt, opts)
		if err != nil {
			return err
		}
		res, err := p.Place()
		if err != nil {
			return err
		}
		p.CheckAndShift()
		fmt.Fprintf(stdout, "global placement: %d iterations, converged=%v, HPWL %.4e\n",
			res.Iterations, res.Converged, res.HPWL)
	}

	if c.noLegal {
		return nil
	}

	if wellFlowPossible(ckt) {
		return wellFlow(ckt, c, params, stdout, stderr)
	}

	lg, err := tetris.New(ckt, tetris.Options{
		MaxIter: params.Legal.MaxIter,
		KWidth:  params.Legal.KWidth,
		KHeight: params.Legal.KHeight,
		KLeft:   params.Legal.KLeft,
		Ctx:     ctx,
	})
	if err != nil {
		return err
	}
	ok, err := lg.Legalize()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(stderr, "legalization: best-effort result, some blocks overlap; retry at lower density")
	}
	fmt.Fprintf(stdout, "tetris legalization: legal=%v, HPWL %.4e\n", ok, ckt.HPWL())
	return nil
}

func globalOptions(c *cli, params config.Params) simpl.Options {
	opts := simpl.DefaultOptions()
	opts.MaxIter = params.Global.MaxIter
	opts.B2BUpdateMaxIter = params.Global.B2BUpdateMaxIter
	opts.CGMaxIter = params.Global.CGMaxIter
	opts.CGTolerance = params.Global.CGTolerance
	opts.CGStopCriterion = params.Global.CGStopCriterion
	opts.SimPLCriterion = params.Global.SimPLCriterion
	opts.PolarCriterion = params.Global.PolarCriterion
	opts.AlphaInit = params.Global.AlphaInit
	opts.AlphaGrowth = params.Global.AlphaGrowth
	opts.Seed = params.Global.Seed
	opts.NumThreads = c.nThreads
	if params.Global.Criterion == "polar" {
		opts.Criterion = simpl.ConvergePolar
	}
	switch params.Global.NetModel {
	case "star":
		opts.Net.Model = netmodel.Star
	case "hpwl":
		opts.Net.Model = netmodel.HPWL
	case "star-hpwl":
		opts.Net.Model = netmodel.StarHPWL
	}
	opts.Net.CenterWeight = params.Global.CenterWeight
	opts.Grid = gridbin.Options{
		CellsPerBin:      params.Global.CellsPerBin,
		FillingRate:      c.density,
		ClusterUpperSize: params.Global.ClusterUpperSize,
	}
	return opts
}

// wellFlowPossible reports whether every movable block carries well geometry
// and the technology names a tap cell.
func wellFlowPossible(ckt *circuit.Circuit) bool {
	if ckt.Tech.WellTapTypeID < 0 {
		return false
	}
	for i := range ckt.Blocks {
		b := &ckt.Blocks[i]
		if b.IsMovable() && ckt.Types[b.TypeID].Well == nil {
			return false
		}
	}
	return true
}

func wellFlow(ckt *circuit.Circuit, c *cli, params config.Params, stdout, stderr io.Writer) error {
	mode := stripe.Strict
	if c.wlgMode == "scavenge" {
		mode = stripe.Scavenge
	}
	maxRowWidth := 0
	if c.maxRowWidth > 0 {
		maxRowWidth = int(c.maxRowWidth / ckt.Tech.GridValueX)
	}
	part, err := stripe.PartitionRegion(ckt, stripe.Options{Mode: mode, MaxRowWidth: maxRowWidth})
	if err != nil {
		return err
	}

	packOpts := rowpack.Options{
		MaxIter:         params.Well.PackMaxIter,
		FirstRowOrientN: params.Well.FirstRowOrientN,
	}
	if ckt.Tech.WellTapTypeID >= 0 {
		if w := ckt.Types[ckt.Tech.WellTapTypeID].Well; w != nil {
			packOpts.TapPHeight = w.PHeight(0)
			packOpts.TapNHeight = w.NHeight(0)
		}
	}

	legal := true
	for ci := range part.Columns {
		for si := range part.Columns[ci].Stripes {
			s := &part.Columns[ci].Stripes[si]
			if len(s.Blocks) == 0 {
				continue
			}
			rows, ok, err := rowpack.PackStripe(ckt, s, packOpts)
			if err != nil {
				return err
			}
			if !ok {
				legal = false
				fmt.Fprintf(stderr, "well legalization: stripe at (%d, %d) spilled; retry at lower density\n", s.Lx, s.Ly)
			}
			if err := rowlegal.LegalizeRows(ckt, rows); err != nil {
				return err
			}
			if _, err := rowlegal.Reorder(ckt, rows, rowlegal.Options{
				MaxConsIter: params.Well.ConsensusMaxIter,
				Lambda:      params.Well.Lambda,
				Epsilon:     params.Well.ConsensusEpsilon,
			}); err != nil {
				return err
			}
			if !c.noWellTap {
				res, err := welltap.Insert(ckt, s, rows, welltap.Options{
					CheckerBoard:    params.Well.CheckerBoard,
					IntervalMicrons: params.Well.TapInterval,
					EndCaps:         params.Well.EndCaps && ckt.Tech.PreEndCapID >= 0,
				})
				if err != nil {
					return err
				}
				if !res.Legal {
					legal = false
				}
			}
		}
	}
	fmt.Fprintf(stdout, "well legalization: legal=%v, HPWL %.4e\n", legal, ckt.HPWL())
	return nil
}

func writeResult(ckt *circuit.Circuit, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for i := range ckt.Blocks {
		b := &ckt.Blocks[i]
		status := "placed"
		if b.IsFixed() {
			status = "fixed"
		}
		if _, err := fmt.Fprintf(f, "%s\t%g\t%g\t%s\t%s\n",
			b.Name, b.LLX, b.LLY, b.Orient, status); err != nil {
			return err
		}
	}
	return nil
}

func dumpTables(ckt *circuit.Circuit, base string) error {
	f, err := os.Create(base + "_block.txt")
	if err != nil {
		return err
	}
	defer f.Close()
	return observe.WriteBlockTable(f, ckt)
}
