// Package nystroem implements the Nystroem method for low rank kernel
// approximation. Where the random Fourier maps draw features from a
// kernel's spectrum without looking at the data, the Nystroem map anchors
// its embedding on a subsample of the training rows: features are kernel
// evaluations against the sampled basis, normalized by the inverse square
// root of the kernel matrix among the basis rows. Embedded inner products
// reproduce the kernel exactly on the basis and approximate it elsewhere,
// improving as the basis grows.
//
// Any kernel.Kerneler can be approximated, including kernels with no
// closed form feature expansion, which is the method's advantage over the
// maps in package sampler. The method is described in
//
//	Williams, Christopher K. I., and Matthias Seeger. "Using the Nystroem
//	method to speed up kernel machines." Advances in Neural Information
//	Processing Systems 13, 2001.
package nystroem

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/zdog234/randfeat/common"
	"github.com/zdog234/randfeat/kernel"
)

// Nystroem is a data-dependent feature map for an arbitrary kernel. The
// basis is sampled uniformly from the fit data, so unlike the other
// estimators the fitted state depends on the data rows, not just their
// width.
type Nystroem struct {
	kern      kernel.Kerneler
	requested int
	seed      uint64

	state *fitted
}

type fitted struct {
	basis *mat.Dense // sampled training rows, m x dOrig
	norm  *mat.Dense // m x m inverse square root of the basis kernel
}

// Option configures a Nystroem map at construction.
type Option func(*Nystroem)

// WithSeed fixes the random source, making the basis choice reproducible.
func WithSeed(seed uint64) Option {
	return func(n *Nystroem) {
		n.seed = seed
	}
}

// New returns an unfit Nystroem map for the given kernel, requesting a
// basis of nComponents rows. New panics if k is nil.
func New(k kernel.Kerneler, nComponents int, opts ...Option) (*Nystroem, error) {
	if k == nil {
		panic("nystroem: nil kernel")
	}
	if nComponents < 1 {
		return nil, common.InvalidConfig{Param: "component count", Value: float64(nComponents), Constraint: "a positive count"}
	}
	n := &Nystroem{kern: k, requested: nComponents, seed: rand.Uint64()}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Fit samples the basis rows and factors the kernel matrix among them.
// When x holds fewer rows than the requested component count, the basis is
// the whole of x and the realized width shrinks to match.
func (n *Nystroem) Fit(x mat.Matrix) error {
	if err := common.VerifyData(x); err != nil {
		return err
	}
	rows, cols := x.Dims()
	m := n.requested
	if m > rows {
		m = rows
	}

	rng := rand.New(rand.NewPCG(n.seed, n.seed^0xdeadbeef))
	buf := make([]float64, cols)
	basis := mat.NewDense(m, cols, nil)
	for i, ri := range rng.Perm(rows)[:m] {
		basis.SetRow(i, common.RowView(buf, x, ri))
	}

	gram := kernel.Gram(n.kern, basis, basis)
	var svd mat.SVD
	if !svd.Factorize(gram, mat.SVDThin) {
		return fmt.Errorf("nystroem: SVD of the basis kernel matrix failed to converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	// Invert the square root over the well determined part of the
	// spectrum only. Singular values under the relative floor are dropped
	// rather than inverted, so a rank deficient basis, such as one with
	// repeated rows, cannot blow up the normalization.
	inv := make([]float64, m)
	tol := 1e-12 * s[0]
	for i, si := range s {
		if si > tol {
			inv[i] = 1 / math.Sqrt(si)
		}
	}

	var scaled, norm mat.Dense
	scaled.Mul(&u, mat.NewDiagDense(m, inv))
	norm.Mul(&scaled, v.T())

	n.state = &fitted{basis: basis, norm: &norm}
	return nil
}

// Transform embeds the rows of x by their kernel values against the basis,
// pushed through the normalization. Output width is NumComponents.
func (n *Nystroem) Transform(x mat.Matrix) (*mat.Dense, error) {
	st := n.state
	if st == nil {
		return nil, common.ShapeMismatch{}
	}
	_, cols := st.basis.Dims()
	if err := common.VerifyCols(cols, x); err != nil {
		return nil, err
	}
	embedded := kernel.Gram(n.kern, x, st.basis)
	var out mat.Dense
	out.Mul(embedded, st.norm.T())
	return &out, nil
}

// NumComponents returns the realized basis size, or zero before Fit. It
// sits below the requested count when the fit data had fewer rows.
func (n *Nystroem) NumComponents() int {
	if n.state == nil {
		return 0
	}
	m, _ := n.state.basis.Dims()
	return m
}

// InputDim returns the data width the map was fit with, or zero before
// Fit.
func (n *Nystroem) InputDim() int {
	if n.state == nil {
		return 0
	}
	_, cols := n.state.basis.Dims()
	return cols
}
