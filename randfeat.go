// Package randfeat provides randomized feature maps that approximate popular
// kernels with explicit finite-dimensional embeddings. Instead of evaluating
// k(x, y) pairwise, an estimator is fit once and then maps data so that inner
// products of the mapped rows approximate the kernel. Linear methods trained
// on the mapped data then behave like their kernelized counterparts at a
// fraction of the cost.
//
// The estimators follow a uniform two-phase contract: Fit consumes a sample
// matrix (most estimators only inspect its width) and freezes the random
// state, and Transform maps matrices with the same number of columns into
// feature space. Fitted estimators are immutable, so a single instance may
// serve Transform calls from many goroutines.
//
// The structured transform in package fastfood is the workhorse; package
// sampler holds the classic Monte-Carlo maps, and package nystroem the
// data-dependent low-rank alternative.
package randfeat

import (
	"gonum.org/v1/gonum/mat"
)

// A Transformer is an estimator that learns a feature mapping from data and
// then applies it. Fit must be called before Transform; implementations
// return an error from Transform when the estimator is unfit or when the
// input width differs from the width seen at fit time.
type Transformer interface {
	// Fit learns the mapping from the sample matrix. Calling Fit again
	// refits from scratch, replacing any previous state.
	Fit(x mat.Matrix) error

	// Transform maps the rows of x into feature space. It never modifies x
	// and is safe for concurrent use once the estimator is fit.
	Transform(x mat.Matrix) (*mat.Dense, error)
}

// An InverseTransformer can additionally map transformed data back to the
// original space. Preprocessing transforms implement this; randomized
// feature maps do not, as their mappings are not invertible.
type InverseTransformer interface {
	Transformer
	InverseTransform(x mat.Matrix) (*mat.Dense, error)
}

// FitTransform fits t on x and returns the transformed x. It is shorthand
// for a Fit immediately followed by a Transform on the same data.
func FitTransform(t Transformer, x mat.Matrix) (*mat.Dense, error) {
	if err := t.Fit(x); err != nil {
		return nil, err
	}
	return t.Transform(x)
}
