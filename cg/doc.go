// Package cg is the sparse linear kernel of the analytical placer. It builds
// symmetric positive-definite systems from (i, j, w) triplets and solves them
// with a Jacobi-preconditioned conjugate-gradient iteration:
//
//   - Triplets: an append-only coefficient buffer reused across solves
//   - CSR: compressed sparse rows built from triplets with duplicate summing
//   - Solve: warm-started PCG with an iteration cap and relative tolerance
//
// The x-axis and y-axis systems of a placement are independent; callers hold
// one Triplets/CSR pair per axis and may run both solves concurrently.
// Triplet accumulation order is preserved through a stable build, so the
// assembled matrix — and therefore the solution — is deterministic for a
// given input regardless of thread count.
package cg
