// Package rowlegal places the blocks of a row segment on a line with
// minimum weighted displacement. Blocks are swept in target order; a block
// whose target lies inside the previously formed cluster is merged into it,
// and the cluster's optimal position is the weight-averaged mean of its
// members' targets minus their in-cluster offsets. Clamping the cluster to
// the segment and laying members out left-justified yields the classical
// optimal solution for a fixed row assignment.
//
// On top of the per-segment solver sits the consensus pass for multi-region
// cells: each well region of such a cell lives in a different row segment
// and may be pulled apart by its neighbours. The pass repeatedly anchors
// every region at the mean of the cell's current sub-locations, re-runs the
// weighted solver per segment, and stops when the largest per-cell
// discrepancy converges, stalls or oscillates.
package rowlegal
