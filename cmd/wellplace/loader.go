package main

// The loader reads the minimal whitespace-delimited bench format standing in
// for the external LEF/DEF layer. Technology file directives:
//
//	grid <x_microns> <y_microns>
//	rowheight <grid_units>
//	nwell <width> <spacing> <opposite_spacing> <max_plug_dist> <overhang>
//	pwell <width> <spacing> <opposite_spacing> <max_plug_dist> <overhang>
//	firstrow <N|FS>
//	type <name> <width> <height>
//	pin <type> <name> <offset_x> <offset_y>
//	tap <type>
//	endcap <pre_type> <post_type>
//
// Cell files add well geometry to declared types:
//
//	well <type> <p_height> <n_height>              (single-well file, -cell)
//	mwellrect <type> <P|N> <llx> <lly> <urx> <ury> (multi-well file, -mcell)
//
// Design file directives:
//
//	region <llx> <lly> <urx> <ury>
//	block <name> <type> <x> <y> [fixed]
//	net <weight> <block[:pin]> <block[:pin]> ...
//
// Types without explicit pins receive one implicit pin at the cell center.

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/wellplace/circuit"
	"github.com/katalvlaran/wellplace/geom"
)

type loader struct {
	tech    circuit.Tech
	region  geom.Rect
	types   []circuit.BlockType
	typeIDs map[string]int

	tapName           string
	preName, postName string
	pendingBlocks     []pendingBlock
	pendingNets       []pendingNet
}

type pendingBlock struct {
	name, typ string
	x, y      float64
	fixed     bool
}

type pendingNet struct {
	weight float64
	pins   []string
}

func newLoader() *loader {
	return &loader{
		tech: circuit.Tech{
			GridValueX: 1, GridValueY: 1,
			WellTapTypeID: -1, PreEndCapID: -1, PostEndCapID: -1,
			FirstRowOrientN: true,
		},
		typeIDs: map[string]int{},
	}
}

func (ld *loader) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := ld.directive(strings.Fields(text)); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
	}
	return sc.Err()
}

func (ld *loader) directive(f []string) error {
	switch f[0] {
	case "grid":
		return ld.floats(f, &ld.tech.GridValueX, &ld.tech.GridValueY)
	case "rowheight":
		return ld.ints(f, &ld.tech.RowHeight)
	case "nwell":
		return ld.wellLayer(f, &ld.tech.NWell)
	case "pwell":
		return ld.wellLayer(f, &ld.tech.PWell)
	case "firstrow":
		if len(f) != 2 {
			return fmt.Errorf("firstrow wants N or FS")
		}
		ld.tech.FirstRowOrientN = f[1] == "N"
		return nil
	case "type":
		if len(f) != 4 {
			return fmt.Errorf("type wants <name> <width> <height>")
		}
		w, err1 := strconv.Atoi(f[2])
		h, err2 := strconv.Atoi(f[3])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("type %s: bad dimensions", f[1])
		}
		ld.typeIDs[f[1]] = len(ld.types)
		ld.types = append(ld.types, circuit.BlockType{Name: f[1], Width: w, Height: h})
		return nil
	case "pin":
		if len(f) != 5 {
			return fmt.Errorf("pin wants <type> <name> <dx> <dy>")
		}
		id, ok := ld.typeIDs[f[1]]
		if !ok {
			return fmt.Errorf("pin on unknown type %s", f[1])
		}
		dx, err1 := strconv.ParseFloat(f[3], 64)
		dy, err2 := strconv.ParseFloat(f[4], 64)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("pin %s.%s: bad offsets", f[1], f[2])
		}
		ld.types[id].Pins = append(ld.types[id].Pins, circuit.Pin{Name: f[2], OffsetX: dx, OffsetY: dy})
		return nil
	case "tap":
		if len(f) != 2 {
			return fmt.Errorf("tap wants <type>")
		}
		ld.tapName = f[1]
		return nil
	case "endcap":
		if len(f) != 3 {
			return fmt.Errorf("endcap wants <pre_type> <post_type>")
		}
		ld.preName, ld.postName = f[1], f[2]
		return nil
	case "well":
		if len(f) != 4 {
			return fmt.Errorf("well wants <type> <p_height> <n_height>")
		}
		id, ok := ld.typeIDs[f[1]]
		if !ok {
			return fmt.Errorf("well on unknown type %s", f[1])
		}
		p, err1 := strconv.Atoi(f[2])
		n, err2 := strconv.Atoi(f[3])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("well %s: bad heights", f[1])
		}
		t := &ld.types[id]
		t.Well = &circuit.MultiWell{
			PRects: []geom.Rect{{LLX: 0, LLY: 0, URX: t.Width, URY: p}},
			NRects: []geom.Rect{{LLX: 0, LLY: p, URX: t.Width, URY: p + n}},
		}
		return nil
	case "mwellrect":
		if len(f) != 7 {
			return fmt.Errorf("mwellrect wants <type> <P|N> <llx> <lly> <urx> <ury>")
		}
		id, ok := ld.typeIDs[f[1]]
		if !ok {
			return fmt.Errorf("mwellrect on unknown type %s", f[1])
		}
		var r geom.Rect
		if err := ld.rect(f[3:], &r); err != nil {
			return err
		}
		t := &ld.types[id]
		if t.Well == nil {
			t.Well = &circuit.MultiWell{}
		}
		switch f[2] {
		case "P":
			t.Well.PRects = append(t.Well.PRects, r)
		case "N":
			t.Well.NRects = append(t.Well.NRects, r)
		default:
			return fmt.Errorf("mwellrect layer must be P or N")
		}
		return nil
	case "region":
		return ld.rect(f[1:], &ld.region)
	case "block":
		if len(f) != 5 && len(f) != 6 {
			return fmt.Errorf("block wants <name> <type> <x> <y> [fixed]")
		}
		x, err1 := strconv.ParseFloat(f[3], 64)
		y, err2 := strconv.ParseFloat(f[4], 64)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("block %s: bad location", f[1])
		}
		ld.pendingBlocks = append(ld.pendingBlocks, pendingBlock{
			name: f[1], typ: f[2], x: x, y: y,
			fixed: len(f) == 6 && f[5] == "fixed",
		})
		return nil
	case "net":
		if len(f) < 3 {
			return fmt.Errorf("net wants <weight> <block[:pin]>...")
		}
		w, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return fmt.Errorf("net: bad weight %s", f[1])
		}
		ld.pendingNets = append(ld.pendingNets, pendingNet{weight: w, pins: f[2:]})
		return nil
	}
	return fmt.Errorf("unknown directive %q", f[0])
}

func (ld *loader) wellLayer(f []string, layer *circuit.WellLayer) error {
	if len(f) != 6 {
		return fmt.Errorf("%s wants <width> <spacing> <opposite> <max_plug> <overhang>", f[0])
	}
	vals := make([]float64, 5)
	for i := range vals {
		v, err := strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return fmt.Errorf("%s: bad value %s", f[0], f[i+1])
		}
		vals[i] = v
	}
	layer.Width, layer.Spacing, layer.OppositeSpacing, layer.MaxPlugDist, layer.Overhang =
		vals[0], vals[1], vals[2], vals[3], vals[4]
	return nil
}

func (ld *loader) rect(f []string, r *geom.Rect) error {
	if len(f) != 4 {
		return fmt.Errorf("rectangle wants 4 coordinates")
	}
	vals := make([]int, 4)
	for i := range vals {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return fmt.Errorf("bad coordinate %s", f[i])
		}
		vals[i] = v
	}
	r.LLX, r.LLY, r.URX, r.URY = vals[0], vals[1], vals[2], vals[3]
	return nil
}

func (ld *loader) floats(f []string, dst ...*float64) error {
	if len(f) != len(dst)+1 {
		return fmt.Errorf("%s wants %d values", f[0], len(dst))
	}
	for i, d := range dst {
		v, err := strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return fmt.Errorf("%s: bad value %s", f[0], f[i+1])
		}
		*d = v
	}
	return nil
}

func (ld *loader) ints(f []string, dst ...*int) error {
	if len(f) != len(dst)+1 {
		return fmt.Errorf("%s wants %d values", f[0], len(dst))
	}
	for i, d := range dst {
		v, err := strconv.Atoi(f[i+1])
		if err != nil {
			return fmt.Errorf("%s: bad value %s", f[0], f[i+1])
		}
		*d = v
	}
	return nil
}

// setGrid overrides the grid values from the -g flag, "X" or "X Y".
func (ld *loader) setGrid(spec string) error {
	f := strings.Fields(spec)
	switch len(f) {
	case 1:
		f = []string{f[0], f[0]}
	case 2:
	default:
		return fmt.Errorf("-g wants one or two values, got %q", spec)
	}
	x, err1 := strconv.ParseFloat(f[0], 64)
	y, err2 := strconv.ParseFloat(f[1], 64)
	if err1 != nil || err2 != nil || x <= 0 || y <= 0 {
		return fmt.Errorf("-g: bad grid %q", spec)
	}
	ld.tech.GridValueX = x
	ld.tech.GridValueY = y
	return nil
}

// build materializes the circuit after every input file has been read.
func (ld *loader) build() (*circuit.Circuit, error) {
	ckt, err := circuit.New(ld.region, ld.tech)
	if err != nil {
		return nil, err
	}
	for i := range ld.types {
		t := ld.types[i]
		if len(t.Pins) == 0 {
			t.Pins = []circuit.Pin{{Name: "P0", OffsetX: float64(t.Width) / 2, OffsetY: float64(t.Height) / 2}}
		}
		if _, err := ckt.AddType(t); err != nil {
			return nil, err
		}
	}
	if ld.tapName != "" {
		id, ok := ld.typeIDs[ld.tapName]
		if !ok {
			return nil, fmt.Errorf("tap type %s not declared", ld.tapName)
		}
		ckt.Tech.WellTapTypeID = id
	}
	if ld.preName != "" {
		pre, ok1 := ld.typeIDs[ld.preName]
		post, ok2 := ld.typeIDs[ld.postName]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("endcap types %s/%s not declared", ld.preName, ld.postName)
		}
		ckt.Tech.PreEndCapID = pre
		ckt.Tech.PostEndCapID = post
	}

	blockIDs := map[string]int{}
	for _, pb := range ld.pendingBlocks {
		tid, ok := ld.typeIDs[pb.typ]
		if !ok {
			return nil, fmt.Errorf("block %s: unknown type %s", pb.name, pb.typ)
		}
		status := circuit.Unplaced
		if pb.fixed {
			status = circuit.Fixed
		}
		id, err := ckt.AddBlock(pb.name, tid, pb.x, pb.y, status)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", pb.name, err)
		}
		blockIDs[pb.name] = id
	}
	for _, pn := range ld.pendingNets {
		pins := make([]circuit.NetPin, 0, len(pn.pins))
		for _, ref := range pn.pins {
			name, pinName, _ := strings.Cut(ref, ":")
			bid, ok := blockIDs[name]
			if !ok {
				return nil, fmt.Errorf("net: unknown block %s", name)
			}
			pinID := 0
			if pinName != "" {
				pinID = -1
				t := ckt.Type(&ckt.Blocks[bid])
				for pi := range t.Pins {
					if t.Pins[pi].Name == pinName {
						pinID = pi
						break
					}
				}
				if pinID < 0 {
					return nil, fmt.Errorf("net: unknown pin %s on %s", pinName, name)
				}
			}
			pins = append(pins, circuit.NetPin{BlockID: bid, PinID: pinID})
		}
		if _, err := ckt.AddNet(pins, pn.weight); err != nil {
			return nil, err
		}
	}
	return ckt, nil
}
