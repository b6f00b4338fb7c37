// Package bisect spreads the cells of an overfilled cluster across its
// expanded bounding box. The box is split recursively:
//
//   - boxes spanning several bins are cut on the current axis at the bin
//     boundary that balances white space, alternating the cut axis each
//     level; cells are redistributed between the halves in proportion to
//     the white space each half holds
//   - a single-bin box still overlapping a fixed macro is cut along the
//     macro's boundary instead
//   - a macro-free leaf places its cells directly: sorted by coordinate,
//     centers spread across the leaf in proportion to cumulative cell size
//
// A half holding no meaningful white space (≤ 1% of its parent) is dropped
// and its sibling inherits every cell, so cells never land inside macros.
// All sorts break ties by block id; spreading is deterministic.
package bisect
