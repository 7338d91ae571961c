package common

import (
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGetGrainSize(t *testing.T) {
	for _, test := range []struct {
		n, min, max int
	}{
		{0, 1, 500},
		{10, 8, 500},
		{1000, 1, 8},
		{100000, 1, 500},
	} {
		grain := GetGrainSize(test.n, test.min, test.max)
		if grain < test.min {
			t.Errorf("n = %v: grain %v below minimum %v", test.n, grain, test.min)
		}
		if grain > test.max {
			t.Errorf("n = %v: grain %v above maximum %v", test.n, grain, test.max)
		}
	}
}

func TestParallelFor(t *testing.T) {
	for _, test := range []struct {
		n, grain int
	}{
		{0, 1},
		{1, 1},
		{7, 3},
		{100, 17},
		{1000, 1000},
		{1000, 4000},
	} {
		visits := make([]int32, test.n)
		ParallelFor(test.n, test.grain, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&visits[i], 1)
			}
		})
		for i, v := range visits {
			if v != 1 {
				t.Errorf("n = %v, grain = %v: index %v visited %v times", test.n, test.grain, i, v)
			}
		}
	}
}

func TestParallelForBadGrain(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic with a zero grain size")
		}
	}()
	ParallelFor(10, 0, func(start, end int) {})
}

func TestRowView(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	x := mat.NewDense(4, 3, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}

	// Dense exposes its rows directly, so no copy is needed.
	for i := 0; i < 4; i++ {
		row := RowView(nil, x, i)
		for j := range row {
			if row[j] != x.At(i, j) {
				t.Errorf("row %v element %v: expected %v, found %v", i, j, x.At(i, j), row[j])
			}
		}
	}

	// A transpose view does not, so the scratch slice is filled instead.
	xt := x.T()
	dst := make([]float64, 4)
	for i := 0; i < 3; i++ {
		row := RowView(dst, xt, i)
		if &row[0] != &dst[0] {
			t.Errorf("row %v: copy fallback did not fill the scratch slice", i)
		}
		for j := range row {
			if row[j] != x.At(j, i) {
				t.Errorf("transposed row %v element %v: expected %v, found %v", i, j, x.At(j, i), row[j])
			}
		}
	}
}
