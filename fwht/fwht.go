// Package fwht implements the fast Walsh-Hadamard transform in Sylvester
// ordering. The transform is unnormalized, so applying it twice scales a
// vector by its length. It is the fast orthogonal mixing step inside the
// structured random projections of package fastfood.
package fwht

import (
	"math/bits"

	"gonum.org/v1/gonum/mat"
)

// Transform applies the Walsh-Hadamard transform to x in place with the
// usual in-place butterfly, costing O(n log n) operations and no extra
// memory. The length of x must be a power of two or Transform panics.
func Transform(x []float64) {
	n := len(x)
	if n == 0 || n&(n-1) != 0 {
		panic("fwht: length is not a power of two")
	}
	for h := 1; h < n; h <<= 1 {
		for i := 0; i < n; i += h << 1 {
			for j := i; j < i+h; j++ {
				a, b := x[j], x[j+h]
				x[j] = a + b
				x[j+h] = a - b
			}
		}
	}
}

// Matrix returns the n by n Hadamard matrix in Sylvester ordering, where
// entry (i, j) is -1 raised to the number of bits shared by i and j. It is
// the explicit form of Transform, useful for checking and for building
// dense reference operators, and costs O(n^2) memory. n must be a power of
// two or Matrix panics.
func Matrix(n int) *mat.Dense {
	if n < 1 || n&(n-1) != 0 {
		panic("fwht: order is not a power of two")
	}
	h := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if bits.OnesCount(uint(i&j))&1 == 0 {
				h.Set(i, j, 1)
			} else {
				h.Set(i, j, -1)
			}
		}
	}
	return h
}
