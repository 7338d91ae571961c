package kernel

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/zdog234/randfeat/common/esttest"
)

func TestRBF(t *testing.T) {
	k := RBF{Sigma: 1.5}
	x := []float64{1, 2, 3}
	if got := k.Kernel(x, x); got != 1 {
		t.Errorf("k(x, x) = %v, expected 1", got)
	}

	y := []float64{0, 2, 4}
	want := math.Exp(-2 / (2 * 1.5 * 1.5))
	if got := k.Kernel(x, y); !scalar.EqualWithinAbsOrRel(got, want, 1e-14, 1e-14) {
		t.Errorf("k(x, y) = %v, expected %v", got, want)
	}

	// KernelDist must agree with Kernel and decrease with distance.
	if got := k.KernelDist(math.Sqrt2); !scalar.EqualWithinAbsOrRel(got, want, 1e-14, 1e-14) {
		t.Errorf("kernel at distance sqrt(2) = %v, expected %v", got, want)
	}
	prev := math.Inf(1)
	for _, d := range []float64{0, 0.5, 1, 2, 4, 10} {
		cur := k.KernelDist(d)
		if cur >= prev {
			t.Errorf("kernel not decreasing at distance %v", d)
		}
		prev = cur
	}

	// The gamma parameterization describes the same kernel.
	g := FromGamma(1 / (2 * 1.5 * 1.5))
	if !scalar.EqualWithinAbsOrRel(g.Sigma, 1.5, 1e-14, 1e-14) {
		t.Errorf("gamma round trip gave sigma %v, expected 1.5", g.Sigma)
	}
}

func TestAdditiveChi2(t *testing.T) {
	k := AdditiveChi2{}
	x := []float64{0.5, 0.25, 0.25}
	// On the diagonal each coordinate contributes x_i.
	if got, want := k.Kernel(x, x), 1.0; !scalar.EqualWithinAbsOrRel(got, want, 1e-14, 1e-14) {
		t.Errorf("k(x, x) = %v, expected %v", got, want)
	}
	y := []float64{0.25, 0.5, 0.25}
	want := 2*0.5*0.25/0.75 + 2*0.25*0.5/0.75 + 0.25
	if got := k.Kernel(x, y); !scalar.EqualWithinAbsOrRel(got, want, 1e-14, 1e-14) {
		t.Errorf("k(x, y) = %v, expected %v", got, want)
	}
	// Coordinates that are zero on both sides contribute nothing rather
	// than dividing by zero.
	if got := k.Kernel([]float64{0, 1}, []float64{0, 1}); got != 1 {
		t.Errorf("k with a shared zero coordinate = %v, expected 1", got)
	}
}

func TestSkewedChi2(t *testing.T) {
	k := SkewedChi2{Skewedness: 1}
	x := []float64{0.1, 2, 0.7}
	if got := k.Kernel(x, x); !scalar.EqualWithinAbsOrRel(got, 1, 1e-14, 1e-14) {
		t.Errorf("k(x, x) = %v, expected 1", got)
	}
	y := []float64{0.3, 1, 0.7}
	want := 1.0
	for i := range x {
		a, b := x[i]+1, y[i]+1
		want *= 2 * math.Sqrt(a*b) / (a + b)
	}
	if got := k.Kernel(x, y); !scalar.EqualWithinAbsOrRel(got, want, 1e-14, 1e-14) {
		t.Errorf("k(x, y) = %v, expected %v", got, want)
	}
	if got := k.Kernel(x, y); got > 1 {
		t.Errorf("kernel value %v above 1", got)
	}
}

func TestGram(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 34))
	x := esttest.RandomMat(9, 4, rng.NormFloat64)
	y := esttest.RandomMat(5, 4, rng.NormFloat64)
	k := RBF{Sigma: 0.8}

	gram := Gram(k, x, y)
	r, c := gram.Dims()
	if r != 9 || c != 5 {
		t.Fatalf("gram is %v x %v, expected 9 x 5", r, c)
	}
	for i := 0; i < 9; i++ {
		for j := 0; j < 5; j++ {
			want := k.Kernel(mat.Row(nil, i, x), mat.Row(nil, j, y))
			if gram.At(i, j) != want {
				t.Errorf("gram(%v,%v) = %v, expected %v", i, j, gram.At(i, j), want)
			}
		}
	}

	// Against itself the matrix is symmetric with a unit diagonal.
	self := Gram(k, x, x)
	for i := 0; i < 9; i++ {
		if self.At(i, i) != 1 {
			t.Errorf("gram(%v,%v) = %v, expected 1", i, i, self.At(i, i))
		}
		for j := 0; j < i; j++ {
			if self.At(i, j) != self.At(j, i) {
				t.Errorf("gram not symmetric at (%v,%v)", i, j)
			}
		}
	}

	if !esttest.Panics(func() { Gram(k, x, esttest.RandomMat(3, 5, rng.NormFloat64)) }) {
		t.Error("no panic on column count mismatch")
	}
}
