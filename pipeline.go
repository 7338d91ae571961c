package randfeat

import (
	"gonum.org/v1/gonum/mat"
)

// A Pipeline chains Transformers so that a scaling step and a feature map
// (for example) can be fit and applied as one unit. Stages are applied in
// the order given.
type Pipeline struct {
	stages []Transformer
}

// NewPipeline constructs a pipeline over the given stages. It panics if no
// stages are provided.
func NewPipeline(stages ...Transformer) *Pipeline {
	if len(stages) == 0 {
		panic("randfeat: pipeline needs at least one stage")
	}
	return &Pipeline{stages: stages}
}

// Fit fits each stage in turn on the output of the previous stages.
func (p *Pipeline) Fit(x mat.Matrix) error {
	cur := x
	for i, stage := range p.stages {
		if err := stage.Fit(cur); err != nil {
			return err
		}
		if i == len(p.stages)-1 {
			break
		}
		next, err := stage.Transform(cur)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// Transform pushes x through every fitted stage.
func (p *Pipeline) Transform(x mat.Matrix) (*mat.Dense, error) {
	cur := x
	var out *mat.Dense
	for _, stage := range p.stages {
		next, err := stage.Transform(cur)
		if err != nil {
			return nil, err
		}
		out = next
		cur = next
	}
	return out, nil
}
