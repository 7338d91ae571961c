package common

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// InvalidConfig is returned by estimator constructors when a parameter is
// outside its valid range.
type InvalidConfig struct {
	Param      string
	Value      float64
	Constraint string
}

func (e InvalidConfig) Error() string {
	return fmt.Sprintf("randfeat: invalid %s %v, need %s", e.Param, e.Value, e.Constraint)
}

// InvalidDimension is returned when data has no rows or no columns.
type InvalidDimension struct {
	Rows int
	Cols int
}

func (e InvalidDimension) Error() string {
	return fmt.Sprintf("randfeat: invalid data shape %v x %v, need at least one row and one column", e.Rows, e.Cols)
}

// ShapeMismatch is returned by Transform when the input width disagrees
// with the width the estimator was fit with. A zero FitCols means the
// estimator has not been fit at all.
type ShapeMismatch struct {
	FitCols int
	Cols    int
}

func (e ShapeMismatch) Error() string {
	if e.FitCols == 0 {
		return "randfeat: transform called before fit"
	}
	return fmt.Sprintf("randfeat: input has %v columns, estimator was fit with %v", e.Cols, e.FitCols)
}

// OutOfDomain is returned when an input entry falls outside the domain of
// the kernel being approximated, such as a negative value passed to an
// estimator for a kernel defined on nonnegative data.
type OutOfDomain struct {
	Row   int
	Col   int
	Value float64
	Min   float64
}

func (e OutOfDomain) Error() string {
	return fmt.Sprintf("randfeat: entry (%v,%v) = %v outside the kernel domain, need values of at least %v", e.Row, e.Col, e.Value, e.Min)
}

var MissingPhase error = errors.New("randfeat: reduced feature map has no phase vector")
var NoData error = errors.New("randfeat: nil data")

// VerifyData returns an error unless x is a non-nil matrix with at least
// one row and one column.
func VerifyData(x mat.Matrix) error {
	if x == nil {
		return NoData
	}
	r, c := x.Dims()
	if r < 1 || c < 1 {
		return InvalidDimension{Rows: r, Cols: c}
	}
	return nil
}

// VerifyCols verifies x and then checks that its width matches the width
// the estimator was fit with. Estimators call this at the top of Transform.
func VerifyCols(fitCols int, x mat.Matrix) error {
	if err := VerifyData(x); err != nil {
		return err
	}
	_, c := x.Dims()
	if c != fitCols {
		return ShapeMismatch{FitCols: fitCols, Cols: c}
	}
	return nil
}
