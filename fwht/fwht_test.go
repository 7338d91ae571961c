package fwht

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func panics(f func()) (b bool) {
	defer func() {
		if r := recover(); r != nil {
			b = true
		}
	}()
	f()
	return
}

func TestTransformKnown(t *testing.T) {
	for _, test := range []struct {
		in, out []float64
	}{
		{[]float64{5}, []float64{5}},
		{[]float64{1, 2}, []float64{3, -1}},
		{[]float64{1, 0, 0, 0}, []float64{1, 1, 1, 1}},
		{[]float64{1, 2, 3, 4}, []float64{10, -2, -4, 0}},
	} {
		x := make([]float64, len(test.in))
		copy(x, test.in)
		Transform(x)
		if !floats.Equal(x, test.out) {
			t.Errorf("transform of %v: expected %v, found %v", test.in, test.out, x)
		}
	}
}

func TestTransformMatchesMatrix(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, n := range []int{1, 2, 4, 8, 16, 32, 64} {
		x := make([]float64, n)
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		want := mat.NewVecDense(n, nil)
		want.MulVec(Matrix(n), mat.NewVecDense(n, append([]float64(nil), x...)))

		Transform(x)
		if !floats.EqualApprox(x, want.RawVector().Data, 1e-12) {
			t.Errorf("n = %v: butterfly disagrees with the explicit matrix", n)
		}
	}
}

func TestTransformInvolution(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for _, n := range []int{2, 8, 64, 256} {
		x := make([]float64, n)
		for i := range x {
			x[i] = rng.NormFloat64()
		}
		scaled := make([]float64, n)
		for i := range x {
			scaled[i] = float64(n) * x[i]
		}
		Transform(x)
		Transform(x)
		if !floats.EqualApprox(x, scaled, 1e-9) {
			t.Errorf("n = %v: applying the transform twice did not scale by n", n)
		}
	}
}

func TestMatrixOrthogonal(t *testing.T) {
	for _, n := range []int{1, 2, 4, 16} {
		h := Matrix(n)
		var prod mat.Dense
		prod.Mul(h, h.T())
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = float64(n)
				}
				if prod.At(i, j) != want {
					t.Errorf("n = %v: (H H^T)(%v,%v) = %v, expected %v", n, i, j, prod.At(i, j), want)
				}
			}
		}
	}
}

func TestBadLengths(t *testing.T) {
	for _, n := range []int{0, 3, 5, 6, 12, 100} {
		x := make([]float64, n)
		if !panics(func() { Transform(x) }) {
			t.Errorf("no panic transforming length %v", n)
		}
		if !panics(func() { Matrix(n) }) {
			t.Errorf("no panic building a Hadamard matrix of order %v", n)
		}
	}
}
