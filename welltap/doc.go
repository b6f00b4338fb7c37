// Package welltap plants service cells into packed gridded rows:
//
//   - well-tap cells at a periodic x-interval derived from the technology's
//     maximum plug distance, so no point of a row is further than that
//     distance from a tap; a checker-board mode doubles the step and
//     staggers odd rows
//   - end-cap cells at both extremes of every row, one synthesized type per
//     distinct (P-well height, N-well height) pair observed across rows
//
// Inserted cells are appended to the circuit, pinned at their target x, and
// the affected row segments are re-legalized so resident cells slide aside.
package welltap
