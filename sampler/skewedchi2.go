package sampler

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zdog234/randfeat/common"
)

// SkewedChi2 approximates the skewed chi-squared kernel
//
//	k(x, y) = prod_i 2 sqrt((x_i+c)(y_i+c)) / (x_i + y_i + 2c)
//
// for nonnegative data, following Li, Ionescu and Sminchisescu. The kernel
// is the RBF construction applied in log space: Fit draws frequencies from
// the hyperbolic secant distribution by inverse CDF, and Transform projects
// log(x+c) through them. Entries below zero are outside the kernel's
// domain and are rejected.
type SkewedChi2 struct {
	skewedness float64
	n          int
	cfg        config

	state *rbfFitted
}

// NewSkewedChi2 returns an unfit sampler for the skewed chi-squared kernel
// with the given skewedness c, producing nComponents features.
func NewSkewedChi2(skewedness float64, nComponents int, opts ...Option) (*SkewedChi2, error) {
	if skewedness <= 0 || math.IsNaN(skewedness) || math.IsInf(skewedness, 0) {
		return nil, common.InvalidConfig{Param: "skewedness", Value: skewedness, Constraint: "a positive finite shift"}
	}
	if nComponents < 1 {
		return nil, common.InvalidConfig{Param: "component count", Value: float64(nComponents), Constraint: "a positive count"}
	}
	return &SkewedChi2{skewedness: skewedness, n: nComponents, cfg: newConfig(opts)}, nil
}

// Fit draws the frequency matrix and phases for data shaped like x. Only
// the column count is used.
func (s *SkewedChi2) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	_, dOrig := x.Dims()
	rng := rand.New(rand.NewPCG(s.cfg.seed, s.cfg.seed^0xdeadbeef))
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: rng}
	w := mat.NewDense(dOrig, s.n, nil)
	for i := 0; i < dOrig; i++ {
		row := w.RawRowView(i)
		for j := range row {
			// Inverse CDF of the hyperbolic secant distribution.
			row[j] = math.Log(math.Tan(math.Pi/2*uniform.Rand())) / math.Pi
		}
	}
	phase := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	offset := make([]float64, s.n)
	for i := range offset {
		offset[i] = phase.Rand()
	}
	s.state = &rbfFitted{weights: w, offset: offset}
	return nil
}

// Transform embeds the rows of x. All entries must be at least zero; the
// first violation is reported as an OutOfDomain error. The input is left
// unmodified.
func (s *SkewedChi2) Transform(x mat.Matrix) (*mat.Dense, error) {
	st := s.state
	if st == nil {
		return nil, common.ShapeMismatch{}
	}
	dOrig, _ := st.weights.Dims()
	if err := common.VerifyCols(dOrig, x); err != nil {
		return nil, err
	}
	rows, _ := x.Dims()

	logged := mat.NewDense(rows, dOrig, nil)
	rowBuf := make([]float64, dOrig)
	for i := 0; i < rows; i++ {
		row := common.RowView(rowBuf, x, i)
		dst := logged.RawRowView(i)
		for j, v := range row {
			if v < 0 {
				return nil, common.OutOfDomain{Row: i, Col: j, Value: v, Min: 0}
			}
			dst[j] = math.Log(v + s.skewedness)
		}
	}

	out := mat.NewDense(rows, s.n, nil)
	out.Mul(logged, st.weights)

	scale := math.Sqrt(2 / float64(s.n))
	grain := common.GetGrainSize(rows, 1, 256)
	common.ParallelFor(rows, grain, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j, v := range row {
				row[j] = math.Cos(v+st.offset[j]) * scale
			}
		}
	})
	return out, nil
}

// Skewedness returns the shift c the sampler was constructed with.
func (s *SkewedChi2) Skewedness() float64 {
	return s.skewedness
}

// InputDim returns the data width the sampler was fit with, or zero before
// Fit.
func (s *SkewedChi2) InputDim() int {
	if s.state == nil {
		return 0
	}
	d, _ := s.state.weights.Dims()
	return d
}

// NumComponents returns the width of the feature space.
func (s *SkewedChi2) NumComponents() int {
	return s.n
}

type skewedChi2Marshal struct {
	Skewedness float64
	N          int
	Seed       uint64
	InputDim   int // zero when unfit
	Weights    []float64
	Offset     []float64
}

func (s *SkewedChi2) MarshalJSON() ([]byte, error) {
	sm := skewedChi2Marshal{
		Skewedness: s.skewedness,
		N:          s.n,
		Seed:       s.cfg.seed,
	}
	if st := s.state; st != nil {
		d, _ := st.weights.Dims()
		sm.InputDim = d
		sm.Weights = st.weights.RawMatrix().Data
		sm.Offset = st.offset
	}
	return json.Marshal(sm)
}

func (s *SkewedChi2) UnmarshalJSON(data []byte) error {
	var sm skewedChi2Marshal
	if err := json.Unmarshal(data, &sm); err != nil {
		return err
	}
	if sm.Skewedness <= 0 || math.IsNaN(sm.Skewedness) || math.IsInf(sm.Skewedness, 0) {
		return common.InvalidConfig{Param: "skewedness", Value: sm.Skewedness, Constraint: "a positive finite shift"}
	}
	if sm.N < 1 {
		return common.InvalidConfig{Param: "component count", Value: float64(sm.N), Constraint: "a positive count"}
	}
	next := SkewedChi2{skewedness: sm.Skewedness, n: sm.N, cfg: config{seed: sm.Seed}}
	if sm.InputDim > 0 {
		if len(sm.Weights) != sm.InputDim*sm.N {
			return fmt.Errorf("sampler: weight matrix has %v entries, expected %v", len(sm.Weights), sm.InputDim*sm.N)
		}
		if len(sm.Offset) != sm.N {
			return fmt.Errorf("sampler: offset vector has length %v, expected %v", len(sm.Offset), sm.N)
		}
		next.state = &rbfFitted{
			weights: mat.NewDense(sm.InputDim, sm.N, sm.Weights),
			offset:  sm.Offset,
		}
	}
	*s = next
	return nil
}
