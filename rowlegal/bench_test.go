package rowlegal

import "testing"

func BenchmarkMinDisplacement(b *testing.B) {
	base := make([]Var, 5000)
	for i := range base {
		base[i] = Var{Width: 10, InitX: float64(i * 7), Weight: 1}
	}
	vars := make([]Var, len(base))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(vars, base)
		MinDisplacement(vars, 0, 60000)
	}
}
