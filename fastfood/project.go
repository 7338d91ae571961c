package fastfood

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zdog234/randfeat/common"
	"github.com/zdog234/randfeat/fwht"
)

// A plan fixes the dimensions of the structured projection before any
// random draws happen. The Walsh-Hadamard mix only exists for powers of
// two, so the input is zero padded up to d, and the projection stacks k
// independent blocks to reach at least the requested width.
type plan struct {
	dOrig int // columns of the data the map was fit for
	d     int // working dimension, the smallest power of two at or above dOrig
	k     int // number of stacked blocks
	n     int // realized projection width, k*d
}

// newPlan sizes a projection for data with dOrig columns and a requested
// width of at least nComponents. The realized width is the smallest
// multiple of the working dimension reaching the request, so it is usually
// larger than asked for; callers must read the realized width back.
func newPlan(dOrig, nComponents int) (plan, error) {
	if dOrig < 1 {
		return plan{}, common.InvalidConfig{Param: "input width", Value: float64(dOrig), Constraint: "at least one column"}
	}
	if nComponents < 1 {
		return plan{}, common.InvalidConfig{Param: "component count", Value: float64(nComponents), Constraint: "a positive count"}
	}
	d := nextPow2(dOrig)
	k := nComponents / d
	if nComponents%d != 0 {
		k++
	}
	return plan{dOrig: dOrig, d: d, k: k, n: k * d}, nil
}

func (p plan) padWidth() int {
	return p.d - p.dOrig
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// A block holds the random factors of one structured projection of size d:
// sign flips, Gaussian weights, a permutation, and row scales. A fitted Map
// stacks k independent blocks.
type block struct {
	b []float64 // signs in {-1, +1}
	g []float64 // iid standard normals
	p []int     // permutation of [0, d), applied as out[i] = in[p[i]]
	s []float64 // scales giving each implied row a chi distributed norm
}

// newBlock draws the factors for one block of size d from rng. The draws
// happen in a fixed order (signs, Gaussians, permutation, scales) so that a
// seeded generator reproduces the block exactly. Each scale is a chi
// variate with d degrees of freedom divided by the norm of the Gaussian
// vector, which matches the row norms of a dense Gaussian projection.
func newBlock(rng *rand.Rand, d int) block {
	blk := block{
		b: make([]float64, d),
		g: make([]float64, d),
		s: make([]float64, d),
	}
	for i := range blk.b {
		if rng.IntN(2) == 0 {
			blk.b[i] = 1
		} else {
			blk.b[i] = -1
		}
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for i := range blk.g {
		blk.g[i] = normal.Rand()
	}
	blk.p = rng.Perm(d)
	chi := distuv.Chi{K: float64(d), Src: rng}
	invNorm := 1 / floats.Norm(blk.g, 2)
	for i := range blk.s {
		blk.s[i] = chi.Rand() * invNorm
	}
	return blk
}

// apply runs the structured stages on the zero padded row x: sign flip,
// Walsh-Hadamard mix, permute, Gaussian reweight, second mix, then the
// final rescale. dst receives the block's d projection values, work is
// scratch of length d, and scale is the precomputed 1/(sigma sqrt(d)).
func (blk block) apply(dst, x, work []float64, scale float64) {
	for i := range work {
		work[i] = x[i] * blk.b[i]
	}
	fwht.Transform(work)
	for i, pi := range blk.p {
		dst[i] = work[pi] * blk.g[i]
	}
	fwht.Transform(dst)
	for i := range dst {
		dst[i] *= blk.s[i] * scale
	}
}

// denseOperator builds this block's projection matrix explicitly,
//
//	(1/(sigma sqrt(d))) S H G P H B
//
// with the diagonal factors as diagonal matrices, H the Hadamard matrix,
// and P the permutation matrix with P[i][p[i]] = 1. It is the O(d^2)
// statement of what apply computes in O(d log d), and exists so the tests
// can check the fast path against it.
func (blk block) denseOperator(sigma float64) *mat.Dense {
	d := len(blk.g)
	h := fwht.Matrix(d)
	perm := mat.NewDense(d, d, nil)
	for i, pi := range blk.p {
		perm.Set(i, pi, 1)
	}

	var hb, phb, gphb, hgphb, v mat.Dense
	hb.Mul(h, mat.NewDiagDense(d, blk.b))
	phb.Mul(perm, &hb)
	gphb.Mul(mat.NewDiagDense(d, blk.g), &phb)
	hgphb.Mul(h, &gphb)
	v.Mul(mat.NewDiagDense(d, blk.s), &hgphb)
	v.Scale(1/(sigma*math.Sqrt(float64(d))), &v)
	return &v
}
