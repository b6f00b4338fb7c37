// Package circuit holds the in-memory design every placement phase reads and
// mutates:
//
//   - BlockType: cell-library entry with pins and optional multi-well geometry
//   - Block: a cell instance with real-valued location, orientation and status
//   - Net: a weighted pin list with cached extreme-pin indices per axis
//   - Tech: well layers, grid values, row height and service cell types
//
// The Circuit is the sole owner of all of the above. Blocks, types and nets
// refer to one another through integer ids resolved against the circuit's
// slices; placement phases receive a *Circuit and never retain child
// pointers across calls. Corrupt library input (mismatched well rectangles,
// non-abutted wells, inconsistent heights) is rejected at load time with an
// *InvariantError; geometric infeasibility during placement is reported by
// the phases themselves through boolean success values, not errors.
package circuit
