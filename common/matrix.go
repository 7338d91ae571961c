// Package common holds the plumbing shared by the feature-map estimators:
// the error taxonomy, input verification, fast row access, and the parallel
// range helper used by batched transforms.
package common

import (
	"gonum.org/v1/gonum/mat"
)

// RowView returns row i of x. When x exposes its backing data, as
// *mat.Dense does, the row is returned without copying and must be treated
// as read-only. Otherwise the row is copied into dst, which must be nil or
// have length equal to the number of columns of x.
func RowView(dst []float64, x mat.Matrix, i int) []float64 {
	if rv, ok := x.(mat.RawRowViewer); ok {
		return rv.RawRowView(i)
	}
	return mat.Row(dst, i, x)
}
