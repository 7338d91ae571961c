// Package fastfood approximates the Gaussian radial basis kernel with the
// Fastfood construction: a random projection assembled from Walsh-Hadamard
// mixes, diagonal random factors, and a permutation instead of a dense
// Gaussian matrix. One block applies in O(d log d) time and O(d) memory
// where a dense projection needs O(d^2) of both, which is what makes wide
// feature maps affordable in high dimension.
//
// Please see:
//
//	Le, Quoc, Tamas Sarlos, and Alex Smola. "Fastfood - Approximating
//		Kernel Expansions in Loglinear Time." International Conference
//		on Machine Learning. 2013.
//	Rahimi, Ali, and Benjamin Recht. "Random features for large-scale
//		kernel machines." Advances in neural information processing
//		systems. 2007.
//
// for the construction and the random feature framework it accelerates.
package fastfood

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zdog234/randfeat/common"
)

// A Map is a Fastfood feature map for the kernel
//
//	k(x, y) = exp(-||x-y||^2 / (2 sigma^2)).
//
// Fit freezes the random structure for a data width; Transform then embeds
// rows so that inner products of embedded rows estimate the kernel. The
// width actually realized depends on the data width, so callers should read
// NumComponents and OutputWidth back after fitting rather than assume the
// requested count.
//
// A Map is immutable once fit, and Transform may be called from concurrent
// goroutines. Fit must not run concurrently with other calls on the same
// instance.
type Map struct {
	sigma     float64
	requested int
	seed      uint64
	reduced   bool

	state *fitted
}

// fitted is the frozen random state of a Map, built in one shot by Fit and
// never mutated afterwards.
type fitted struct {
	plan   plan
	blocks []block
	phase  []float64 // nil in full mode
}

// An Option configures a Map beyond the required kernel parameters.
type Option func(*Map)

// WithSeed fixes the random stream of Fit, so two maps constructed with the
// same parameters, seed, and data width transform identically. Without it
// every Map draws its own stream.
func WithSeed(seed uint64) Option {
	return func(m *Map) {
		m.seed = seed
	}
}

// Reduced switches the map from the paired cosine and sine embedding of
// width 2n to the phase-shifted cosine embedding of width n. The reduced
// map has slightly higher estimator variance at half the output width.
func Reduced() Option {
	return func(m *Map) {
		m.reduced = true
	}
}

// New returns an unfit Map for the radial basis kernel with bandwidth
// sigma, realizing at least nComponents projection components once fit.
func New(sigma float64, nComponents int, opts ...Option) (*Map, error) {
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, common.InvalidConfig{Param: "sigma", Value: sigma, Constraint: "a positive finite bandwidth"}
	}
	if nComponents < 1 {
		return nil, common.InvalidConfig{Param: "component count", Value: float64(nComponents), Constraint: "a positive count"}
	}
	m := &Map{
		sigma:     sigma,
		requested: nComponents,
		seed:      rand.Uint64(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Fit draws the random structure for data shaped like x. Only the column
// count of x matters; the entries are never read, so fitting on a single
// representative row is enough. Fitting again replaces the previous state
// wholesale, and a failed Fit leaves the Map unfit rather than partially
// updated.
//
// The random stream is consumed in a fixed order, block by block and then
// the phase vector in reduced mode, so a seed fully determines the fitted
// state for a given data width.
func (m *Map) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	_, dOrig := x.Dims()
	pl, err := newPlan(dOrig, m.requested)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(m.seed, m.seed^0xdeadbeef))
	blocks := make([]block, pl.k)
	for j := range blocks {
		blocks[j] = newBlock(rng, pl.d)
	}
	var phase []float64
	if m.reduced {
		uniform := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
		phase = make([]float64, pl.n)
		for i := range phase {
			phase[i] = uniform.Rand()
		}
	}
	m.state = &fitted{plan: pl, blocks: blocks, phase: phase}
	return nil
}

// Transform embeds the rows of x into feature space, returning a matrix
// with one row per input row and OutputWidth columns. Rows are processed
// concurrently. The input is never modified.
func (m *Map) Transform(x mat.Matrix) (*mat.Dense, error) {
	st := m.state
	if st == nil {
		return nil, common.ShapeMismatch{}
	}
	if err := common.VerifyCols(st.plan.dOrig, x); err != nil {
		return nil, err
	}
	if m.reduced && st.phase == nil {
		return nil, common.MissingPhase
	}

	rows, _ := x.Dims()
	out := mat.NewDense(rows, m.OutputWidth(), nil)
	scale := 1 / (m.sigma * math.Sqrt(float64(st.plan.d)))
	grain := common.GetGrainSize(rows, 1, 64)
	common.ParallelFor(rows, grain, func(start, end int) {
		padded := make([]float64, st.plan.d)
		work := make([]float64, st.plan.d)
		proj := make([]float64, st.plan.n)
		rowBuf := make([]float64, st.plan.dOrig)
		for i := start; i < end; i++ {
			row := common.RowView(rowBuf, x, i)
			st.projectRow(proj, row, padded, work, scale)
			if m.reduced {
				mapReduced(out.RawRowView(i), proj, st.phase)
			} else {
				mapFull(out.RawRowView(i), proj)
			}
		}
	})
	return out, nil
}

// projectRow computes the stacked projection of one unpadded row: the row
// is zero padded to the working dimension and each block writes its values
// into its own segment of proj.
func (st *fitted) projectRow(proj, row, padded, work []float64, scale float64) {
	d := st.plan.d
	copy(padded, row)
	for i := len(row); i < d; i++ {
		padded[i] = 0
	}
	for j, blk := range st.blocks {
		blk.apply(proj[j*d:(j+1)*d], padded, work, scale)
	}
}

// Sigma returns the kernel bandwidth the map was constructed with.
func (m *Map) Sigma() float64 {
	return m.sigma
}

// InputDim returns the data width the map was fit with, or zero before Fit.
func (m *Map) InputDim() int {
	if m.state == nil {
		return 0
	}
	return m.state.plan.dOrig
}

// WorkingDim returns the padded power-of-two dimension rows are lifted to,
// or zero before Fit.
func (m *Map) WorkingDim() int {
	if m.state == nil {
		return 0
	}
	return m.state.plan.d
}

// PadWidth returns how many zero columns padding appends to each row, or
// zero before Fit.
func (m *Map) PadWidth() int {
	if m.state == nil {
		return 0
	}
	return m.state.plan.padWidth()
}

// NumBlocks returns the number of stacked structured blocks, or zero
// before Fit.
func (m *Map) NumBlocks() int {
	if m.state == nil {
		return 0
	}
	return m.state.plan.k
}

// NumComponents returns the realized projection width, a multiple of the
// working dimension at or above the requested count. It is zero before Fit.
func (m *Map) NumComponents() int {
	if m.state == nil {
		return 0
	}
	return m.state.plan.n
}

// OutputWidth returns the number of columns Transform produces: twice the
// realized components in full mode, exactly the realized components in
// reduced mode. It is zero before Fit.
func (m *Map) OutputWidth() int {
	if m.state == nil {
		return 0
	}
	if m.reduced {
		return m.state.plan.n
	}
	return 2 * m.state.plan.n
}
