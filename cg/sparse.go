package cg

import "sort"

// Triplets accumulates (row, col, weight) coefficients. The buffer is meant
// to be reused: Reset keeps the backing arrays so the steady-state rebuild of
// a net model allocates nothing.
type Triplets struct {
	rows []int32
	cols []int32
	vals []float64
}

// Reserve grows the backing arrays to hold at least n coefficients.
func (t *Triplets) Reserve(n int) {
	if cap(t.rows) >= n {
		return
	}
	rows := make([]int32, len(t.rows), n)
	copy(rows, t.rows)
	t.rows = rows
	cols := make([]int32, len(t.cols), n)
	copy(cols, t.cols)
	t.cols = cols
	vals := make([]float64, len(t.vals), n)
	copy(vals, t.vals)
	t.vals = vals
}

// Add appends one coefficient. Duplicates are summed at build time.
func (t *Triplets) Add(i, j int, w float64) {
	t.rows = append(t.rows, int32(i))
	t.cols = append(t.cols, int32(j))
	t.vals = append(t.vals, w)
}

// Len returns the number of accumulated coefficients.
func (t *Triplets) Len() int { return len(t.rows) }

// Reset empties the buffer without releasing storage.
func (t *Triplets) Reset() {
	t.rows = t.rows[:0]
	t.cols = t.cols[:0]
	t.vals = t.vals[:0]
}

// CSR is a square sparse matrix in compressed-sparse-row form with the
// diagonal extracted for Jacobi preconditioning.
type CSR struct {
	n      int
	rowPtr []int32
	colIdx []int32
	vals   []float64
	diag   []float64
}

// Order returns the matrix dimension.
func (m *CSR) Order() int { return m.n }

// NNZ returns the number of stored entries after duplicate summing.
func (m *CSR) NNZ() int { return len(m.colIdx) }

// BuildCSR assembles an n×n matrix from the triplet buffer. Entries sharing
// (i, j) are summed; within a row, columns are sorted ascending, so the
// result is independent of accumulation order. Returns ErrIndexOutOfRange on
// a triplet outside [0, n).
// Complexity: O(nnz log nnz) time, O(nnz) memory.
func BuildCSR(n int, t *Triplets) (*CSR, error) {
	nnz := t.Len()
	for k := 0; k < nnz; k++ {
		if t.rows[k] < 0 || t.rows[k] >= int32(n) || t.cols[k] < 0 || t.cols[k] >= int32(n) {
			return nil, ErrIndexOutOfRange
		}
	}

	// bucket entries per row
	counts := make([]int32, n+1)
	for _, i := range t.rows {
		counts[i+1]++
	}
	for i := 0; i < n; i++ {
		counts[i+1] += counts[i]
	}
	order := make([]int32, nnz)
	next := make([]int32, n)
	copy(next, counts[:n])
	for k := 0; k < nnz; k++ {
		i := t.rows[k]
		order[next[i]] = int32(k)
		next[i]++
	}

	m := &CSR{
		n:      n,
		rowPtr: make([]int32, n+1),
		colIdx: make([]int32, 0, nnz),
		vals:   make([]float64, 0, nnz),
		diag:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		row := order[counts[i]:counts[i+1]]
		// sort the row by column; stable on the original index keeps the
		// summation order deterministic
		sort.SliceStable(row, func(a, b int) bool {
			return t.cols[row[a]] < t.cols[row[b]]
		})
		for _, k := range row {
			j := t.cols[k]
			last := len(m.colIdx) - 1
			if last >= int(m.rowPtr[i]) && m.colIdx[last] == j {
				m.vals[last] += t.vals[k]
			} else {
				m.colIdx = append(m.colIdx, j)
				m.vals = append(m.vals, t.vals[k])
			}
		}
		m.rowPtr[i+1] = int32(len(m.colIdx))
	}
	for i := 0; i < n; i++ {
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			if m.colIdx[p] == int32(i) {
				m.diag[i] = m.vals[p]
			}
		}
	}
	return m, nil
}

// MulVec computes y = A·x.
func (m *CSR) MulVec(x, y []float64) {
	for i := 0; i < m.n; i++ {
		sum := 0.0
		for p := m.rowPtr[i]; p < m.rowPtr[i+1]; p++ {
			sum += m.vals[p] * x[m.colIdx[p]]
		}
		y[i] = sum
	}
}
