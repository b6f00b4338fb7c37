// Package wellplace is a gridded-cell analytical placer for standard-cell
// designs with N-well/P-well continuity rules.
//
// 🚀 What is wellplace?
//
//	A pure-Go placement engine that takes a netlist of movable cells, a cell
//	library with well geometry, fixed macros and a row-tiled region, and
//	produces legal cell positions minimizing half-perimeter wirelength:
//
//	  • Analytical global placement — bound-to-bound quadratic wirelength
//	    minimization with look-ahead legalization feedback (SimPL/POLAR)
//	  • Row-based detailed legalization — a Tetris-style sweep over
//	    white-space segments
//	  • Well-aware legalization — vertical stripes, variable-height gridded
//	    rows with well abutment, 1-D minimum-displacement placement,
//	    consensus reordering and well-tap / end-cap insertion
//
// ✨ Why choose wellplace?
//
//   - Deterministic          — same input, seed and thread count, same result
//   - Pure Go                — no cgo, no hidden dependencies
//   - Composable             — each phase is a package with a narrow API
//
// The subpackages, leaves first:
//
//	geom/      — rectangles, intervals, orientations
//	circuit/   — blocks, types, nets, technology; the owning data store
//	cg/        — sparse CSR build + preconditioned conjugate gradient
//	netmodel/  — B2B, star, HPWL and star-HPWL linearizations
//	gridbin/   — density bins, overflow clusters, white-space tables
//	bisect/    — recursive bisection cell spreading
//	simpl/     — the global-placement driver loop
//	tetris/    — row-sweep detailed legalizer
//	stripe/    — well-rule-driven space partitioning
//	rowpack/   — gridded-row packing with multi-region cells
//	rowlegal/  — 1-D minimum displacement + consensus reordering
//	welltap/   — well-tap and end-cap insertion
//	config/    — every tuning constant, YAML-loadable
//	observe/   — phase observers and debug table writers
//
// The cmd/wellplace driver wires the phases together behind the classic
// -lef/-def/-cell command line.
package wellplace
