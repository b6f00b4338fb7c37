// Package stripe carves the placement region into the vertical bands the
// well-aware legalizer works in. Column width derives from the technology's
// maximum well-plug distance (a cell must never sit further than that from a
// tap), and columns are separated by the worst-case well-to-well spacing.
//
// Within a column, per-row white space is intersected with the column's
// x-range; maximal runs of rows sharing an identical free span become
// Stripes. Because a stripe is built from rows with the same free span, its
// interior is macro-free by construction. Every movable block is assigned to
// the stripe closest to its center, searching its own column and both
// neighbours.
//
// Two rightmost-column policies exist: Strict trims the last column to the
// uniform width, Scavenge stretches it to the region boundary.
package stripe
