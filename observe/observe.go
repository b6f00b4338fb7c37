// Package observe decouples the placement core from progress reporting and
// debug artifacts. The core packages do no logging and no file I/O; a driver
// wires an Observer and decides what to persist. The writers emit the
// whitespace-delimited numeric tables (MATLAB patch format) and the
// displacement quiver file used for visual inspection.
package observe

import (
	"fmt"
	"io"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/rowpack"
)

// Snapshot captures the state handed to an observer at a phase boundary.
type Snapshot struct {
	HPWL       float64
	LowerBound []float64
	UpperBound []float64
}

// Observer receives phase-end notifications.
type Observer interface {
	OnPhaseEnd(phase string, snap Snapshot)
}

// Nop is an Observer that discards everything.
type Nop struct{}

// OnPhaseEnd implements Observer.
func (Nop) OnPhaseEnd(string, Snapshot) {}

// WriteBlockTable emits one MATLAB patch row per block: the four x corners,
// the four y corners.
func WriteBlockTable(w io.Writer, ckt *circuit.Circuit) error {
	for i := range ckt.Blocks {
		b := &ckt.Blocks[i]
		_, err := fmt.Fprintf(w, "%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			b.LLX, b.URX(), b.URX(), b.LLX,
			b.LLY, b.LLY, b.URY(), b.URY())
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteRowTable emits one patch row per gridded row.
func WriteRowTable(w io.Writer, rows []rowpack.GriddedRow) error {
	for i := range rows {
		r := &rows[i]
		lx, ux := float64(r.Lx), float64(r.Lx+r.Width)
		ly, uy := float64(r.Ly), float64(r.URY())
		_, err := fmt.Fprintf(w, "%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			lx, ux, ux, lx, ly, ly, uy, uy)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteWellTable emits the P-well and N-well rectangles of a row stack: one
// rectangle per well slab, alternating with the rows' orientation.
func WriteWellTable(pw, nw io.Writer, rows []rowpack.GriddedRow) error {
	for i := range rows {
		r := &rows[i]
		lx, ux := float64(r.Lx), float64(r.Lx+r.Width)
		edge := float64(r.Ly + r.PNEdge())
		ly, uy := float64(r.Ly), float64(r.URY())
		lower, upper := pw, nw
		if !r.OrientN {
			lower, upper = nw, pw
		}
		if _, err := fmt.Fprintf(lower, "%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			lx, ux, ux, lx, ly, ly, edge, edge); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(upper, "%g\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			lx, ux, ux, lx, edge, edge, uy, uy); err != nil {
			return err
		}
	}
	return nil
}

// WriteDisplacement emits one quiver row (x, y, dx, dy) per movable block,
// measured against the supplied before-positions indexed by block id.
func WriteDisplacement(w io.Writer, ckt *circuit.Circuit, beforeX, beforeY []float64) error {
	for i := range ckt.Blocks {
		b := &ckt.Blocks[i]
		if !b.IsMovable() || i >= len(beforeX) {
			continue
		}
		_, err := fmt.Fprintf(w, "%g\t%g\t%g\t%g\n",
			beforeX[i], beforeY[i], b.LLX-beforeX[i], b.LLY-beforeY[i])
		if err != nil {
			return err
		}
	}
	return nil
}
