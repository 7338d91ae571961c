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

// RBF approximates the radial basis kernel
//
//	k(x, y) = exp(-gamma ||x-y||^2)
//
// with a dense random Fourier feature map: Fit draws a Gaussian frequency
// matrix and uniform phases, and Transform embeds rows as phase-shifted
// cosines of the projections. Inner products of embedded rows estimate the
// kernel with variance shrinking as the component count grows. For the
// bandwidth form exp(-||x-y||^2 / (2 sigma^2)), use gamma = 1/(2 sigma^2).
//
// The map costs O(d n) per row against the O(n log d) of fastfood.Map, but
// places no structure on the frequencies.
type RBF struct {
	gamma float64
	n     int
	cfg   config

	state *rbfFitted
}

type rbfFitted struct {
	weights *mat.Dense // dOrig x n frequency matrix
	offset  []float64  // n phases in [0, 2pi)
}

// NewRBF returns an unfit sampler for the radial basis kernel with the
// given gamma, producing nComponents features.
func NewRBF(gamma float64, nComponents int, opts ...Option) (*RBF, error) {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, common.InvalidConfig{Param: "gamma", Value: gamma, Constraint: "a positive finite bandwidth"}
	}
	if nComponents < 1 {
		return nil, common.InvalidConfig{Param: "component count", Value: float64(nComponents), Constraint: "a positive count"}
	}
	return &RBF{gamma: gamma, n: nComponents, cfg: newConfig(opts)}, nil
}

// Fit draws the frequency matrix and phases for data shaped like x. Only
// the column count is used. Refitting replaces the state wholesale.
func (r *RBF) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	_, dOrig := x.Dims()
	rng := rand.New(rand.NewPCG(r.cfg.seed, r.cfg.seed^0xdeadbeef))
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 * r.gamma), Src: rng}
	w := mat.NewDense(dOrig, r.n, nil)
	for i := 0; i < dOrig; i++ {
		row := w.RawRowView(i)
		for j := range row {
			row[j] = normal.Rand()
		}
	}
	uniform := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	offset := make([]float64, r.n)
	for i := range offset {
		offset[i] = uniform.Rand()
	}
	r.state = &rbfFitted{weights: w, offset: offset}
	return nil
}

// Transform embeds the rows of x, returning one row of NumComponents
// phase-shifted cosine features per input row. The projection itself is a
// single matrix product; the cosine pass runs rows in parallel.
func (r *RBF) Transform(x mat.Matrix) (*mat.Dense, error) {
	st := r.state
	if st == nil {
		return nil, common.ShapeMismatch{}
	}
	dOrig, _ := st.weights.Dims()
	if err := common.VerifyCols(dOrig, x); err != nil {
		return nil, err
	}
	rows, _ := x.Dims()
	out := mat.NewDense(rows, r.n, nil)
	out.Mul(x, st.weights)

	scale := math.Sqrt(2 / float64(r.n))
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

// Gamma returns the kernel parameter the sampler was constructed with.
func (r *RBF) Gamma() float64 {
	return r.gamma
}

// InputDim returns the data width the sampler was fit with, or zero before
// Fit.
func (r *RBF) InputDim() int {
	if r.state == nil {
		return 0
	}
	d, _ := r.state.weights.Dims()
	return d
}

// NumComponents returns the width of the feature space.
func (r *RBF) NumComponents() int {
	return r.n
}

// rbfMarshal mirrors RBF for JSON with the frequency matrix flattened in
// row major order.
type rbfMarshal struct {
	Gamma    float64
	N        int
	Seed     uint64
	InputDim int // zero when unfit
	Weights  []float64
	Offset   []float64
}

func (r *RBF) MarshalJSON() ([]byte, error) {
	rm := rbfMarshal{
		Gamma: r.gamma,
		N:     r.n,
		Seed:  r.cfg.seed,
	}
	if st := r.state; st != nil {
		d, _ := st.weights.Dims()
		rm.InputDim = d
		rm.Weights = st.weights.RawMatrix().Data
		rm.Offset = st.offset
	}
	return json.Marshal(rm)
}

func (r *RBF) UnmarshalJSON(data []byte) error {
	var rm rbfMarshal
	if err := json.Unmarshal(data, &rm); err != nil {
		return err
	}
	if rm.Gamma <= 0 || math.IsNaN(rm.Gamma) || math.IsInf(rm.Gamma, 0) {
		return common.InvalidConfig{Param: "gamma", Value: rm.Gamma, Constraint: "a positive finite bandwidth"}
	}
	if rm.N < 1 {
		return common.InvalidConfig{Param: "component count", Value: float64(rm.N), Constraint: "a positive count"}
	}
	next := RBF{gamma: rm.Gamma, n: rm.N, cfg: config{seed: rm.Seed}}
	if rm.InputDim > 0 {
		if len(rm.Weights) != rm.InputDim*rm.N {
			return fmt.Errorf("sampler: weight matrix has %v entries, expected %v", len(rm.Weights), rm.InputDim*rm.N)
		}
		if len(rm.Offset) != rm.N {
			return fmt.Errorf("sampler: offset vector has length %v, expected %v", len(rm.Offset), rm.N)
		}
		next.state = &rbfFitted{
			weights: mat.NewDense(rm.InputDim, rm.N, rm.Weights),
			offset:  rm.Offset,
		}
	}
	*r = next
	return nil
}
