// Package tetris is the row-based detailed legalizer. Rows are carved out of
// the region at a uniform height; fixed-macro footprints are subtracted from
// each row, leaving white-space segments. Blocks are visited in a packing
// order. For every row of a bounded window that widens on later iterations,
// the candidate x is the leftmost one, no further left than KLeft block
// widths from the block's start, that
//
//   - lies inside a white-space segment of every covered row, and
//   - sits at or beyond the sweep contour of every covered row
//
// (right-to-left sweeps mirror this), and the block moves to the candidate
// minimizing |x − x₀| + |y − y₀|. Within a row the candidate is not
// necessarily the legal x closest to x₀. Sweeps alternate direction (left-to-right, then
// right-to-left) until a sweep places every block legally or the iteration
// cap runs out; a failed block keeps its best-effort location so callers can
// retry at lower density.
package tetris
