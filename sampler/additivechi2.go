package sampler

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/zdog234/randfeat/common"
)

// AdditiveChi2 approximates the additive chi-squared kernel
//
//	k(x, y) = sum_i 2 x_i y_i / (x_i + y_i)
//
// for nonnegative data by sampling the kernel's Fourier transform at
// regular intervals, following Vedaldi and Zisserman. Unlike the Monte
// Carlo maps in this package the embedding is deterministic: each input
// coordinate expands into 2*steps - 1 features, and accuracy is set by the
// step count and sampling interval rather than by chance.
//
// The kernel is often composed with an RBF stage to approximate the
// exponentiated chi-squared kernel.
type AdditiveChi2 struct {
	steps    int
	interval float64

	fitCols int // zero when unfit
}

// NewAdditiveChi2 returns an unfit sampler using the published interval
// for the given step count. Only 1, 2 or 3 steps have tabulated intervals;
// other counts require NewAdditiveChi2Interval.
func NewAdditiveChi2(sampleSteps int) (*AdditiveChi2, error) {
	var interval float64
	switch sampleSteps {
	case 1:
		interval = 0.8
	case 2:
		interval = 0.5
	case 3:
		interval = 0.4
	default:
		return nil, common.InvalidConfig{
			Param:      "sample steps",
			Value:      float64(sampleSteps),
			Constraint: "1, 2 or 3 unless an interval is given",
		}
	}
	return &AdditiveChi2{steps: sampleSteps, interval: interval}, nil
}

// NewAdditiveChi2Interval returns an unfit sampler with an explicit
// sampling interval, allowing step counts beyond the tabulated ones.
func NewAdditiveChi2Interval(sampleSteps int, interval float64) (*AdditiveChi2, error) {
	if sampleSteps < 1 {
		return nil, common.InvalidConfig{Param: "sample steps", Value: float64(sampleSteps), Constraint: "a positive count"}
	}
	if interval <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return nil, common.InvalidConfig{Param: "sample interval", Value: interval, Constraint: "a positive finite interval"}
	}
	return &AdditiveChi2{steps: sampleSteps, interval: interval}, nil
}

// Fit records the data width. The embedding itself has no sampled state.
func (a *AdditiveChi2) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	_, dOrig := x.Dims()
	a.fitCols = dOrig
	return nil
}

// Transform embeds the rows of x into width InputDim * (2*steps - 1).
// Features are laid out in blocks of the input width: the direct block
// first, then alternating cosine and sine blocks per step. All entries
// must be at least zero; the first violation is reported as an
// OutOfDomain error.
func (a *AdditiveChi2) Transform(x mat.Matrix) (*mat.Dense, error) {
	if a.fitCols == 0 {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(a.fitCols, x); err != nil {
		return nil, err
	}
	rows, dOrig := x.Dims()

	rowBuf := make([]float64, dOrig)
	for i := 0; i < rows; i++ {
		row := common.RowView(rowBuf, x, i)
		for j, v := range row {
			if v < 0 {
				return nil, common.OutOfDomain{Row: i, Col: j, Value: v, Min: 0}
			}
		}
	}

	out := mat.NewDense(rows, a.NumComponents(), nil)
	grain := common.GetGrainSize(rows, 1, 256)
	common.ParallelFor(rows, grain, func(start, end int) {
		buf := make([]float64, dOrig)
		for i := start; i < end; i++ {
			row := common.RowView(buf, x, i)
			a.embedRow(out.RawRowView(i), row)
		}
	})
	return out, nil
}

// embedRow writes the sampled features for one row into dst. Zero entries
// contribute zero to every block; skipping them also keeps log(0) out of
// the step terms.
func (a *AdditiveChi2) embedRow(dst, row []float64) {
	d := len(row)
	for j, v := range row {
		if v == 0 {
			continue
		}
		dst[j] = math.Sqrt(v * a.interval)
		logV := math.Log(v)
		for s := 1; s < a.steps; s++ {
			sl := float64(s) * a.interval
			factor := math.Sqrt(2 * v * a.interval / math.Cosh(math.Pi*sl))
			dst[(2*s-1)*d+j] = factor * math.Cos(sl*logV)
			dst[2*s*d+j] = factor * math.Sin(sl*logV)
		}
	}
}

// Steps returns the step count the sampler was constructed with.
func (a *AdditiveChi2) Steps() int {
	return a.steps
}

// Interval returns the sampling interval in use.
func (a *AdditiveChi2) Interval() float64 {
	return a.interval
}

// InputDim returns the data width the sampler was fit with, or zero before
// Fit.
func (a *AdditiveChi2) InputDim() int {
	return a.fitCols
}

// NumComponents returns the width of the feature space, or zero before
// Fit.
func (a *AdditiveChi2) NumComponents() int {
	return a.fitCols * (2*a.steps - 1)
}

type additiveChi2Marshal struct {
	Steps    int
	Interval float64
	FitCols  int
}

func (a *AdditiveChi2) MarshalJSON() ([]byte, error) {
	return json.Marshal(additiveChi2Marshal{Steps: a.steps, Interval: a.interval, FitCols: a.fitCols})
}

func (a *AdditiveChi2) UnmarshalJSON(data []byte) error {
	var am additiveChi2Marshal
	if err := json.Unmarshal(data, &am); err != nil {
		return err
	}
	if am.Steps < 1 {
		return common.InvalidConfig{Param: "sample steps", Value: float64(am.Steps), Constraint: "a positive count"}
	}
	if am.Interval <= 0 || math.IsNaN(am.Interval) || math.IsInf(am.Interval, 0) {
		return common.InvalidConfig{Param: "sample interval", Value: am.Interval, Constraint: "a positive finite interval"}
	}
	if am.FitCols < 0 {
		return common.InvalidConfig{Param: "input width", Value: float64(am.FitCols), Constraint: "a nonnegative width"}
	}
	*a = AdditiveChi2{steps: am.Steps, interval: am.Interval, fitCols: am.FitCols}
	return nil
}
