package cg

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Result reports the outcome of one Solve call.
type Result struct {
	Iterations int
	Residual   float64 // final relative residual ‖r‖/‖b‖
	Converged  bool
}

// Solve runs a Jacobi-preconditioned conjugate-gradient iteration on
// A·x = b, warm-started from the contents of x. The solution is written back
// into x. Iteration stops when the relative residual drops below tol or
// after maxIter steps, whichever comes first.
//
// A zero diagonal entry is treated as 1 by the preconditioner, so rows that
// received no springs (isolated blocks) pass through unscaled.
//
// Complexity: O(maxIter · nnz) time, O(n) scratch memory per call.
func Solve(a *CSR, b, x []float64, maxIter int, tol float64) (Result, error) {
	n := a.Order()
	if len(b) != n || len(x) != n {
		return Result{}, ErrDimensionMismatch
	}
	if n == 0 {
		return Result{Converged: true}, nil
	}

	r := make([]float64, n)
	z := make([]float64, n)
	p := make([]float64, n)
	ap := make([]float64, n)

	// r = b − A·x
	a.MulVec(x, r)
	floats.Scale(-1, r)
	floats.Add(r, b)

	bNorm := math.Sqrt(floats.Dot(b, b))
	if bNorm == 0 {
		bNorm = 1
	}

	applyJacobi(a, r, z)
	copy(p, z)
	rz := floats.Dot(r, z)

	res := Result{Residual: math.Sqrt(floats.Dot(r, r)) / bNorm}
	if res.Residual < tol {
		res.Converged = true
		return res, nil
	}

	for k := 0; k < maxIter; k++ {
		a.MulVec(p, ap)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			// matrix numerically lost positive definiteness; keep the
			// current iterate
			break
		}
		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		res.Iterations = k + 1
		res.Residual = math.Sqrt(floats.Dot(r, r)) / bNorm
		if res.Residual < tol {
			res.Converged = true
			return res, nil
		}
		applyJacobi(a, r, z)
		rzNext := floats.Dot(r, z)
		beta := rzNext / rz
		rz = rzNext
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
	}
	return res, nil
}

func applyJacobi(a *CSR, r, z []float64) {
	for i := 0; i < a.n; i++ {
		d := a.diag[i]
		if d == 0 {
			d = 1
		}
		z[i] = r[i] / d
	}
}
