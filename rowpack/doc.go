// Package rowpack stacks the blocks of one stripe into gridded rows:
// variable-height horizontal slabs whose P-well and N-well heights grow to
// the largest well of any member. Rows alternate orientation (N, FS, N, …)
// so adjacent rows share abutting wells of the same type.
//
// Packing is greedy. An upward pass sorts blocks by (LLY, LLX) and fills a
// front row until its width capacity is reached, then closes it and opens
// the next row on top; a downward pass mirrors the procedure from the
// stripe's top. A cell with R well regions claims R adjacent rows, one
// region per row; the extra well height a tall row forces between two
// regions of such a cell is recorded as the cell's stretch length.
//
// A pass fails when the stacked rows spill past the stripe boundary; the
// packer then retries in the opposite direction up to the iteration cap.
// On success every member block receives its row-aligned LLY, its
// orientation, and — for multi-region cells — its stretch vector.
package rowpack
