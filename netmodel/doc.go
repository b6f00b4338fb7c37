// Package netmodel linearizes half-perimeter wirelength into sparse
// quadratic systems. For every net it emits matrix triplets and right-hand
// side terms for one axis; four interchangeable models are provided:
//
//   - B2B: every pin springs to the net's min and max pins (the default)
//   - Star: the driver pin (pin 0) springs to every load
//   - HPWL: a single spring between the extreme pins
//   - StarHPWL: star springs rescaled by each pin's share of the net span,
//     computed over a precomputed driver-load pair cache
//
// All models share the spring stiffness 1/((p−1)·(|Δ|+ε)) (the two star
// models scale it by a distance-decay factor), the boundary spring that
// pulls out-of-region blocks toward the region center, and the unit diagonal
// pinning fixed blocks. Nets with one pin, or with at least as many pins as
// the ignore threshold, contribute nothing.
//
// A Builder owns one axis-independent view of the circuit; BuildX and BuildY
// may run concurrently on the same Builder as long as each call gets its own
// triplet buffer and right-hand side.
package netmodel
