package geom

import (
	"reflect"
	"testing"
)

// TestRectOverlap verifies overlap detection and overlap area on a few
// hand-checked rectangle pairs.
func TestRectOverlap(t *testing.T) {
	cases := []struct {
		name string
		a, b Rect
		over bool
		area int64
	}{
		{"Disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 30, 30}, false, 0},
		{"Abutting", Rect{0, 0, 10, 10}, Rect{10, 0, 20, 10}, false, 0},
		{"Corner", Rect{0, 0, 10, 10}, Rect{5, 5, 15, 15}, true, 25},
		{"Nested", Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}, true, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.over {
				t.Errorf("Overlaps = %v; want %v", got, tc.over)
			}
			if got := tc.a.OverlapArea(tc.b); got != tc.area {
				t.Errorf("OverlapArea = %d; want %d", got, tc.area)
			}
			// overlap is symmetric
			if got := tc.b.OverlapArea(tc.a); got != tc.area {
				t.Errorf("OverlapArea reversed = %d; want %d", got, tc.area)
			}
		})
	}
}

// TestMergeSegs checks coalescing of overlapping and abutting intervals.
func TestMergeSegs(t *testing.T) {
	cases := []struct {
		name string
		in   []Seg
		want []Seg
	}{
		{"Empty", nil, nil},
		{"Single", []Seg{{0, 5}}, []Seg{{0, 5}}},
		{"Abutting", []Seg{{0, 5}, {5, 10}}, []Seg{{0, 10}}},
		{"Overlapping", []Seg{{3, 8}, {0, 5}}, []Seg{{0, 8}}},
		{"Disjoint", []Seg{{10, 20}, {0, 5}}, []Seg{{0, 5}, {10, 20}}},
		{"Contained", []Seg{{0, 20}, {5, 10}}, []Seg{{0, 20}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeSegs(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("MergeSegs(%v) = %v; want %v", tc.in, got, tc.want)
			}
		})
	}
}

// TestSubtractSegs checks white-space computation: subtracting macro
// footprints from a row span.
func TestSubtractSegs(t *testing.T) {
	cases := []struct {
		name   string
		lo, hi int
		holes  []Seg
		want   []Seg
	}{
		{"NoHoles", 0, 100, nil, []Seg{{0, 100}}},
		{"MiddleHole", 0, 300, []Seg{{100, 200}}, []Seg{{0, 100}, {200, 300}}},
		{"LeftEdge", 0, 100, []Seg{{0, 30}}, []Seg{{30, 100}}},
		{"FullCover", 0, 100, []Seg{{0, 100}}, nil},
		{"TwoHoles", 0, 100, []Seg{{60, 70}, {10, 20}}, []Seg{{0, 10}, {20, 60}, {70, 100}}},
		{"HoleBeyond", 0, 100, []Seg{{90, 150}}, []Seg{{0, 90}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SubtractSegs(tc.lo, tc.hi, tc.holes)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SubtractSegs = %v; want %v", got, tc.want)
			}
		})
	}
}

// TestOrientString covers the DEF names round-trip.
func TestOrientString(t *testing.T) {
	want := map[Orient]string{
		N: "N", FN: "FN", FS: "FS", S: "S", E: "E", W: "W", FE: "FE", FW: "FW",
	}
	for o, name := range want {
		if o.String() != name {
			t.Errorf("Orient(%d).String() = %q; want %q", int(o), o.String(), name)
		}
	}
	if !FS.IsFlippedY() || N.IsFlippedY() {
		t.Error("IsFlippedY: FS must flip, N must not")
	}
}
