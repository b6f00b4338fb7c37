// Package geom provides the small geometric vocabulary shared by every
// placement phase:
//
//   - Rect / RectF: integer and real axis-aligned rectangles
//   - Seg: half-open 1-D intervals with merging and intersection
//   - Orient: the eight standard-cell orientations (N, FN, FS, S, E, W, FE, FW)
//   - Point2D: a real-valued location
//
// All types are plain values; none of them allocate or hold references back
// into the circuit. Placement code passes them by value.
package geom
