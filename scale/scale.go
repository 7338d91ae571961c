// Package scale provides preprocessing transformers that put the columns
// of a data matrix on a common footing before a feature map sees them.
// Kernel bandwidths assume comparably scaled inputs, so a scaler is the
// usual first stage of a feature-map pipeline.
//
// Unlike the feature maps, scalers are invertible: each implements
// InverseTransform to map processed data back to the original units.
package scale

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/zdog234/randfeat/common"
)

// UniformDimension reports columns whose entries were all identical at fit
// time. The scale for those columns falls back to a usable default, so the
// fit itself succeeded and the scaler is ready; callers that care which
// columns were degenerate can inspect Dims.
type UniformDimension struct {
	Dims []int
}

func (u UniformDimension) Error() string {
	return fmt.Sprintf("scale: columns %v hold a single repeated value", u.Dims)
}

// TooFewRows is returned by Fit when the data holds fewer than two rows. A
// scale estimated from a single sample would collapse it to a constant.
var TooFewRows error = errors.New("scale: need at least two rows to set a scale")

// applyRows writes f(dst, src) for every row of x into a fresh matrix,
// processing rows in parallel.
func applyRows(x mat.Matrix, f func(dst, src []float64)) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	grain := common.GetGrainSize(rows, 1, 500)
	common.ParallelFor(rows, grain, func(start, end int) {
		buf := make([]float64, cols)
		for i := start; i < end; i++ {
			f(out.RawRowView(i), common.RowView(buf, x, i))
		}
	})
	return out
}

// Standard scales every column to mean zero and unit variance. The zero
// value is ready to fit.
type Standard struct {
	mu, sigma []float64
}

// Fit estimates the per-column mean and standard deviation. Columns with
// zero variance keep a deviation of one so scaling stays finite, and are
// reported through a UniformDimension error; the scaler is usable either
// way.
func (s *Standard) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	rows, cols := x.Dims()
	if rows < 2 {
		return TooFewRows
	}

	mu := make([]float64, cols)
	buf := make([]float64, cols)
	for i := 0; i < rows; i++ {
		row := common.RowView(buf, x, i)
		for j, v := range row {
			mu[j] += v
		}
	}
	for j := range mu {
		mu[j] /= float64(rows)
	}

	sigma := make([]float64, cols)
	for i := 0; i < rows; i++ {
		row := common.RowView(buf, x, i)
		for j, v := range row {
			diff := v - mu[j]
			sigma[j] += diff * diff
		}
	}
	var uniform UniformDimension
	for j := range sigma {
		sigma[j] = math.Sqrt(sigma[j] / float64(rows))
		if sigma[j] == 0 {
			uniform.Dims = append(uniform.Dims, j)
			sigma[j] = 1
		}
	}

	s.mu, s.sigma = mu, sigma
	if uniform.Dims != nil {
		return uniform
	}
	return nil
}

// Transform returns x with every column centered and divided by its
// deviation.
func (s *Standard) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.mu == nil {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(len(s.mu), x); err != nil {
		return nil, err
	}
	return applyRows(x, func(dst, src []float64) {
		for j, v := range src {
			dst[j] = (v - s.mu[j]) / s.sigma[j]
		}
	}), nil
}

// InverseTransform maps scaled data back to the original units.
func (s *Standard) InverseTransform(x mat.Matrix) (*mat.Dense, error) {
	if s.mu == nil {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(len(s.mu), x); err != nil {
		return nil, err
	}
	return applyRows(x, func(dst, src []float64) {
		for j, v := range src {
			dst[j] = v*s.sigma[j] + s.mu[j]
		}
	}), nil
}

// Mean returns the fitted per-column means, or nil before Fit.
func (s *Standard) Mean() []float64 {
	return s.mu
}

// Deviation returns the fitted per-column standard deviations, or nil
// before Fit.
func (s *Standard) Deviation() []float64 {
	return s.sigma
}

// MinMax scales every column linearly so the fitted data spans [0, 1]. The
// zero value is ready to fit.
type MinMax struct {
	min, max []float64
}

// Fit records the per-column minimum and maximum. Columns where the two
// coincide are widened by one half on each side so scaling stays finite,
// and are reported through a UniformDimension error; the scaler is usable
// either way.
func (m *MinMax) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	rows, cols := x.Dims()
	if rows < 2 {
		return TooFewRows
	}

	lo := make([]float64, cols)
	hi := make([]float64, cols)
	for j := range lo {
		lo[j] = math.Inf(1)
		hi[j] = math.Inf(-1)
	}
	buf := make([]float64, cols)
	for i := 0; i < rows; i++ {
		row := common.RowView(buf, x, i)
		for j, v := range row {
			if v < lo[j] {
				lo[j] = v
			}
			if v > hi[j] {
				hi[j] = v
			}
		}
	}

	var uniform UniformDimension
	for j := range lo {
		if lo[j] == hi[j] {
			uniform.Dims = append(uniform.Dims, j)
			lo[j] -= 0.5
			hi[j] += 0.5
		}
	}

	m.min, m.max = lo, hi
	if uniform.Dims != nil {
		return uniform
	}
	return nil
}

// Transform returns x with every column mapped so the fitted range covers
// [0, 1]. Values outside the fitted range land outside [0, 1].
func (m *MinMax) Transform(x mat.Matrix) (*mat.Dense, error) {
	if m.min == nil {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(len(m.min), x); err != nil {
		return nil, err
	}
	return applyRows(x, func(dst, src []float64) {
		for j, v := range src {
			dst[j] = (v - m.min[j]) / (m.max[j] - m.min[j])
		}
	}), nil
}

// InverseTransform maps scaled data back to the original units.
func (m *MinMax) InverseTransform(x mat.Matrix) (*mat.Dense, error) {
	if m.min == nil {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(len(m.min), x); err != nil {
		return nil, err
	}
	return applyRows(x, func(dst, src []float64) {
		for j, v := range src {
			dst[j] = v*(m.max[j]-m.min[j]) + m.min[j]
		}
	}), nil
}

// Min returns the fitted per-column minima, or nil before Fit.
func (m *MinMax) Min() []float64 {
	return m.min
}

// Max returns the fitted per-column maxima, or nil before Fit.
func (m *MinMax) Max() []float64 {
	return m.max
}

// None passes data through unchanged. It fills a pipeline slot that may or
// may not scale, so composition code never branches on a missing stage.
type None struct {
	cols int
}

func (n *None) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	_, cols := x.Dims()
	n.cols = cols
	return nil
}

func (n *None) Transform(x mat.Matrix) (*mat.Dense, error) {
	if n.cols == 0 {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(n.cols, x); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(x), nil
}

func (n *None) InverseTransform(x mat.Matrix) (*mat.Dense, error) {
	return n.Transform(x)
}
