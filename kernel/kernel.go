// Package kernel implements the exact kernel functions that the randomized
// feature maps approximate. The estimators never evaluate these on user
// data; they exist as the reference targets for accuracy checks and as the
// plumbing for the Nystroem method, which needs exact kernel rows against
// its sampled basis.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/zdog234/randfeat/common"
)

// Kerneler is a type that can evaluate a kernel function between two
// locations of equal length.
type Kerneler interface {
	Kernel(x, y []float64) float64
}

// A DistKerneler is a kernel that depends on its arguments only through
// the Euclidean distance between them.
type DistKerneler interface {
	KernelDist(dist float64) float64
}

// RBF is the Gaussian radial basis kernel
//
//	k(x, y) = exp(-||x-y||^2 / (2 sigma^2))
//
// with bandwidth sigma. The same kernel is often written with a gamma
// parameter as exp(-gamma ||x-y||^2), related by gamma = 1/(2 sigma^2).
type RBF struct {
	Sigma float64
}

// FromGamma returns the RBF kernel with the given gamma parameterization.
func FromGamma(gamma float64) RBF {
	return RBF{Sigma: math.Sqrt(1 / (2 * gamma))}
}

func (k RBF) Kernel(x, y []float64) float64 {
	if len(x) != len(y) {
		panic("kernel: length mismatch")
	}
	return k.KernelDist(floats.Distance(x, y, 2))
}

func (k RBF) KernelDist(dist float64) float64 {
	return math.Exp(-dist * dist / (2 * k.Sigma * k.Sigma))
}

// AdditiveChi2 is the additive chi-squared kernel
//
//	k(x, y) = sum_i 2 x_i y_i / (x_i + y_i)
//
// for nonnegative histogram-like data. Coordinates where both entries are
// zero contribute nothing.
type AdditiveChi2 struct{}

func (AdditiveChi2) Kernel(x, y []float64) float64 {
	if len(x) != len(y) {
		panic("kernel: length mismatch")
	}
	var sum float64
	for i, xi := range x {
		yi := y[i]
		if s := xi + yi; s > 0 {
			sum += 2 * xi * yi / s
		}
	}
	return sum
}

// SkewedChi2 is the skewed chi-squared kernel
//
//	k(x, y) = prod_i 2 sqrt((x_i+c)(y_i+c)) / (x_i + y_i + 2c)
//
// with skewedness c > 0, defined for entries greater than -c.
type SkewedChi2 struct {
	Skewedness float64
}

func (k SkewedChi2) Kernel(x, y []float64) float64 {
	if len(x) != len(y) {
		panic("kernel: length mismatch")
	}
	prod := 1.0
	for i, xi := range x {
		a := xi + k.Skewedness
		b := y[i] + k.Skewedness
		prod *= 2 * math.Sqrt(a*b) / (a + b)
	}
	return prod
}

// Gram returns the kernel matrix of the rows of x against the rows of y,
// with entry (i, j) holding k applied to row i of x and row j of y. The
// rows are processed in parallel. Gram panics if the column counts differ.
func Gram(k Kerneler, x, y mat.Matrix) *mat.Dense {
	rx, cx := x.Dims()
	ry, cy := y.Dims()
	if cx != cy {
		panic("kernel: column count mismatch")
	}
	out := mat.NewDense(rx, ry, nil)
	grain := common.GetGrainSize(rx, 1, 64)
	common.ParallelFor(rx, grain, func(start, end int) {
		xbuf := make([]float64, cx)
		ybuf := make([]float64, cy)
		for i := start; i < end; i++ {
			xi := common.RowView(xbuf, x, i)
			for j := 0; j < ry; j++ {
				yj := common.RowView(ybuf, y, j)
				out.Set(i, j, k.Kernel(xi, yj))
			}
		}
	})
	return out
}
