// Package esttest contains helper functions shared by the tests of the
// feature-map estimators: random data generation, the behavioral contract
// every Transformer must satisfy, and a JSON round-trip check.
package esttest

import (
	"errors"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/zdog234/randfeat"
	"github.com/zdog234/randfeat/common"
)

// RandomMat returns an r by c dense matrix whose entries are drawn from f.
func RandomMat(r, c int, f func() float64) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, f())
		}
	}
	return m
}

// ShapeOnly reports arbitrary dimensions without any backing data. It
// stands in for the empty shapes that mat.NewDense refuses to construct,
// so tests can probe how estimators reject zero rows or columns.
type ShapeOnly struct {
	R, C int
}

func (s ShapeOnly) Dims() (int, int)    { return s.R, s.C }
func (s ShapeOnly) At(i, j int) float64 { panic("esttest: ShapeOnly has no data") }
func (s ShapeOnly) T() mat.Matrix       { return mat.Transpose{Matrix: s} }

// Panics reports whether calling f panics.
func Panics(f func()) (b bool) {
	defer func() {
		if r := recover(); r != nil {
			b = true
		}
	}()
	f()
	return
}

// TestTransformerContract exercises the behavior every estimator shares:
// transforming before fitting fails with a shape mismatch, width drift
// after fitting fails, empty shapes are rejected by both phases, repeated
// transforms are bit-identical, and the input is never modified. fresh must
// return a new unfit estimator on each call, and sample must generate data
// inside the estimator's domain.
func TestTransformerContract(t *testing.T, name string, fresh func() randfeat.Transformer, cols int, sample func() float64) {
	x := RandomMat(10, cols, sample)

	tr := fresh()
	if _, err := tr.Transform(x); err == nil {
		t.Errorf("%v: no error transforming before fit", name)
	} else {
		var mismatch common.ShapeMismatch
		if !errors.As(err, &mismatch) {
			t.Errorf("%v: transform before fit returned %T, expected ShapeMismatch", name, err)
		}
	}

	tr = fresh()
	if err := tr.Fit(x); err != nil {
		t.Fatalf("%v: error fitting: %v", name, err)
	}
	xCopy := mat.DenseCopyOf(x)
	z, err := tr.Transform(x)
	if err != nil {
		t.Fatalf("%v: error transforming: %v", name, err)
	}
	if !mat.Equal(x, xCopy) {
		t.Errorf("%v: transform modified its input", name)
	}
	if rz, _ := z.Dims(); rz != 10 {
		t.Errorf("%v: expected one output row per input row, found %v for 10", name, rz)
	}

	z2, err := tr.Transform(x)
	if err != nil {
		t.Fatalf("%v: error transforming a second time: %v", name, err)
	}
	if !reflect.DeepEqual(z.RawMatrix().Data, z2.RawMatrix().Data) {
		t.Errorf("%v: repeated transforms of the same data disagree", name)
	}

	wide := RandomMat(4, cols+1, sample)
	if _, err := tr.Transform(wide); err == nil {
		t.Errorf("%v: no error transforming data wider than the fit", name)
	} else {
		var mismatch common.ShapeMismatch
		if !errors.As(err, &mismatch) {
			t.Errorf("%v: width drift returned %T, expected ShapeMismatch", name, err)
		} else if mismatch.FitCols != cols || mismatch.Cols != cols+1 {
			t.Errorf("%v: width drift reported %v against %v, expected %v against %v",
				name, mismatch.Cols, mismatch.FitCols, cols+1, cols)
		}
	}

	if err := fresh().Fit(ShapeOnly{R: 0, C: cols}); err == nil {
		t.Errorf("%v: no error fitting zero rows", name)
	}
	if err := fresh().Fit(ShapeOnly{R: 5, C: 0}); err == nil {
		t.Errorf("%v: no error fitting zero columns", name)
	}
	if _, err := tr.Transform(ShapeOnly{R: 0, C: cols}); err == nil {
		t.Errorf("%v: no error transforming zero rows", name)
	}
}

// Jsoner is the method pair the persistent estimators implement.
type Jsoner interface {
	MarshalJSON() ([]byte, error)
	UnmarshalJSON([]byte) error
}

// TestJSONRoundTrip marshals src, unmarshals the bytes into dst, and checks
// that the two then transform x bit-identically.
func TestJSONRoundTrip(t *testing.T, name string, src, dst randfeat.Transformer, x mat.Matrix) {
	js, ok := src.(Jsoner)
	if !ok {
		t.Fatalf("%v: estimator does not implement JSON marshaling", name)
	}
	jd, ok := dst.(Jsoner)
	if !ok {
		t.Fatalf("%v: destination does not implement JSON unmarshaling", name)
	}
	b, err := js.MarshalJSON()
	if err != nil {
		t.Fatalf("%v: error marshaling: %v", name, err)
	}
	if err := jd.UnmarshalJSON(b); err != nil {
		t.Fatalf("%v: error unmarshaling: %v", name, err)
	}
	zs, err := src.Transform(x)
	if err != nil {
		t.Fatalf("%v: error transforming with the source estimator: %v", name, err)
	}
	zd, err := dst.Transform(x)
	if err != nil {
		t.Fatalf("%v: error transforming with the restored estimator: %v", name, err)
	}
	if !reflect.DeepEqual(zs.RawMatrix().Data, zd.RawMatrix().Data) {
		t.Errorf("%v: restored estimator transforms differently", name)
	}
}
