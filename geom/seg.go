package geom

import "sort"

// Seg is a 1-D interval [Lo, Hi). White-space bookkeeping in rows and
// stripes is done entirely with Seg slices.
type Seg struct {
	Lo, Hi int
}

// Span returns Hi − Lo.
func (s Seg) Span() int { return s.Hi - s.Lo }

// Contains reports whether [lo, hi) fits inside s.
func (s Seg) Contains(lo, hi int) bool { return lo >= s.Lo && hi <= s.Hi }

// Intersect returns the overlap of s and t and whether it is non-empty.
func (s Seg) Intersect(t Seg) (Seg, bool) {
	lo := max(s.Lo, t.Lo)
	hi := min(s.Hi, t.Hi)
	if lo >= hi {
		return Seg{}, false
	}
	return Seg{Lo: lo, Hi: hi}, true
}

// MergeSegs sorts the intervals by Lo and coalesces overlapping or abutting
// ones. The input slice is not modified; the result is freshly allocated.
// Complexity: O(n log n).
func MergeSegs(segs []Seg) []Seg {
	if len(segs) == 0 {
		return nil
	}
	sorted := make([]Seg, len(segs))
	copy(sorted, segs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lo != sorted[j].Lo {
			return sorted[i].Lo < sorted[j].Lo
		}
		return sorted[i].Hi < sorted[j].Hi
	})
	merged := make([]Seg, 0, len(sorted))
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if s.Lo <= cur.Hi {
			if s.Hi > cur.Hi {
				cur.Hi = s.Hi
			}
			continue
		}
		merged = append(merged, cur)
		cur = s
	}
	return append(merged, cur)
}

// SubtractSegs removes every interval in holes from [lo, hi) and returns the
// remaining free intervals in ascending order. holes need not be sorted.
// Complexity: O(n log n).
func SubtractSegs(lo, hi int, holes []Seg) []Seg {
	free := []Seg{{Lo: lo, Hi: hi}}
	if lo >= hi {
		return nil
	}
	for _, h := range MergeSegs(holes) {
		last := free[len(free)-1]
		if h.Hi <= last.Lo || h.Lo >= last.Hi {
			continue
		}
		free = free[:len(free)-1]
		if h.Lo > last.Lo {
			free = append(free, Seg{Lo: last.Lo, Hi: h.Lo})
		}
		if h.Hi < last.Hi {
			free = append(free, Seg{Lo: h.Hi, Hi: last.Hi})
		}
		if len(free) == 0 {
			return nil
		}
	}
	return free
}
