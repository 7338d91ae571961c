// Package sampler implements the classic Monte-Carlo feature maps: random
// Fourier features for the radial basis kernel, the skewed chi-squared
// sampler for multiplicative histogram kernels, and the deterministic
// regular sampling of the additive chi-squared kernel. They trade the
// structured speed of package fastfood for simplicity and for kernels the
// structured construction does not cover.
//
// Please see:
//
//	Rahimi, Ali, and Benjamin Recht. "Random features for large-scale
//		kernel machines." Advances in neural information processing
//		systems. 2007.
//	Li, Fuxin, Catalin Ionescu, and Cristian Sminchisescu. "Random
//		Fourier approximations for skewed multiplicative histogram
//		kernels." DAGM 2010.
//	Vedaldi, Andrea, and Andrew Zisserman. "Efficient additive kernels
//		via explicit feature maps." CVPR 2010.
package sampler

import (
	"math/rand/v2"
)

// An Option configures the randomized samplers.
type Option func(*config)

type config struct {
	seed uint64
}

func newConfig(opts []Option) config {
	cfg := config{seed: rand.Uint64()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSeed fixes the random stream drawn at fit time, so two samplers with
// the same parameters, seed, and data width transform identically.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}
