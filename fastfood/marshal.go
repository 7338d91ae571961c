package fastfood

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/zdog234/randfeat/common"
)

// mapMarshal mirrors Map for JSON. The random factors are spelled out
// concretely, so a map restored on another machine transforms bit for bit
// like the original regardless of generator or library versions.
type mapMarshal struct {
	Sigma      float64
	Requested  int
	Seed       uint64
	Reduced    bool
	InputDim   int // zero when the map is unfit
	WorkingDim int
	Blocks     []blockMarshal
	Phase      []float64
}

type blockMarshal struct {
	B []float64
	G []float64
	P []int
	S []float64
}

func (m *Map) MarshalJSON() ([]byte, error) {
	mm := mapMarshal{
		Sigma:     m.sigma,
		Requested: m.requested,
		Seed:      m.seed,
		Reduced:   m.reduced,
	}
	if st := m.state; st != nil {
		mm.InputDim = st.plan.dOrig
		mm.WorkingDim = st.plan.d
		mm.Blocks = make([]blockMarshal, len(st.blocks))
		for j, blk := range st.blocks {
			mm.Blocks[j] = blockMarshal{B: blk.b, G: blk.g, P: blk.p, S: blk.s}
		}
		mm.Phase = st.phase
	}
	return json.Marshal(mm)
}

func (m *Map) UnmarshalJSON(data []byte) error {
	var mm mapMarshal
	if err := json.Unmarshal(data, &mm); err != nil {
		return err
	}
	if mm.Sigma <= 0 || math.IsNaN(mm.Sigma) || math.IsInf(mm.Sigma, 0) {
		return common.InvalidConfig{Param: "sigma", Value: mm.Sigma, Constraint: "a positive finite bandwidth"}
	}
	if mm.Requested < 1 {
		return common.InvalidConfig{Param: "component count", Value: float64(mm.Requested), Constraint: "a positive count"}
	}
	next := Map{
		sigma:     mm.Sigma,
		requested: mm.Requested,
		seed:      mm.Seed,
		reduced:   mm.Reduced,
	}
	if mm.InputDim > 0 {
		st, err := restoreState(mm)
		if err != nil {
			return err
		}
		next.state = st
	}
	*m = next
	return nil
}

// restoreState rebuilds and validates the fitted state of a marshaled map.
// The factor lengths must match the working dimension and each permutation
// must be a bijection on it, since a corrupt permutation would silently
// compute a different operator.
func restoreState(mm mapMarshal) (*fitted, error) {
	d := mm.WorkingDim
	if d < 1 || d&(d-1) != 0 {
		return nil, fmt.Errorf("fastfood: working dimension %v is not a power of two", d)
	}
	if d < mm.InputDim {
		return nil, fmt.Errorf("fastfood: working dimension %v below input width %v", d, mm.InputDim)
	}
	if len(mm.Blocks) == 0 {
		return nil, fmt.Errorf("fastfood: fitted state has no blocks")
	}
	blocks := make([]block, len(mm.Blocks))
	seen := make([]bool, d)
	for j, bm := range mm.Blocks {
		if len(bm.B) != d || len(bm.G) != d || len(bm.P) != d || len(bm.S) != d {
			return nil, fmt.Errorf("fastfood: block %v factors do not match working dimension %v", j, d)
		}
		for i := range seen {
			seen[i] = false
		}
		for _, pi := range bm.P {
			if pi < 0 || pi >= d || seen[pi] {
				return nil, fmt.Errorf("fastfood: block %v permutation is not a bijection", j)
			}
			seen[pi] = true
		}
		blocks[j] = block{b: bm.B, g: bm.G, p: bm.P, s: bm.S}
	}
	pl := plan{dOrig: mm.InputDim, d: d, k: len(blocks), n: len(blocks) * d}
	if mm.Phase != nil && len(mm.Phase) != pl.n {
		return nil, fmt.Errorf("fastfood: phase vector length %v does not match width %v", len(mm.Phase), pl.n)
	}
	return &fitted{plan: pl, blocks: blocks, phase: mm.Phase}, nil
}
