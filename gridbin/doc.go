// Package gridbin detects placement-density overflow. The placement region
// is tiled into square bins sized to hold a target number of average cells;
// each bin tracks the movable cells whose center falls inside it, the white
// space left after subtracting fixed macros, and an over-fill flag. A
// summed-area table answers rectangular white-space queries in O(1).
//
// Overfilled bins are clustered by breadth-first search over 8-adjacency.
// The largest cluster's bounding box is expanded until it holds enough white
// space for its cells; the expanded box seeds the recursive bisection
// spreader (package bisect). Bins covered by an expanded box are marked
// Placed and excluded from subsequent clustering within the same look-ahead
// pass.
package gridbin
