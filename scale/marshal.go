package scale

import (
	"encoding/json"
	"fmt"
)

// The scalers persist through the same concrete mirror pattern as the
// feature maps, so a fitted preprocessing stage can be stored next to the
// map it feeds. An unfit scaler marshals with empty state and restores
// unfit.

type standardMarshal struct {
	Mu    []float64
	Sigma []float64
}

func (s *Standard) MarshalJSON() ([]byte, error) {
	return json.Marshal(standardMarshal{Mu: s.mu, Sigma: s.sigma})
}

func (s *Standard) UnmarshalJSON(data []byte) error {
	var sm standardMarshal
	if err := json.Unmarshal(data, &sm); err != nil {
		return err
	}
	if len(sm.Mu) != len(sm.Sigma) {
		return fmt.Errorf("scale: %v means against %v deviations", len(sm.Mu), len(sm.Sigma))
	}
	for j, v := range sm.Sigma {
		if !(v > 0) {
			return fmt.Errorf("scale: column %v has deviation %v, need positive", j, v)
		}
	}
	if len(sm.Mu) == 0 {
		*s = Standard{}
		return nil
	}
	*s = Standard{mu: sm.Mu, sigma: sm.Sigma}
	return nil
}

type minMaxMarshal struct {
	Min []float64
	Max []float64
}

func (m *MinMax) MarshalJSON() ([]byte, error) {
	return json.Marshal(minMaxMarshal{Min: m.min, Max: m.max})
}

func (m *MinMax) UnmarshalJSON(data []byte) error {
	var mm minMaxMarshal
	if err := json.Unmarshal(data, &mm); err != nil {
		return err
	}
	if len(mm.Min) != len(mm.Max) {
		return fmt.Errorf("scale: %v minima against %v maxima", len(mm.Min), len(mm.Max))
	}
	for j := range mm.Min {
		if !(mm.Max[j] > mm.Min[j]) {
			return fmt.Errorf("scale: column %v has range [%v, %v], need a positive width",
				j, mm.Min[j], mm.Max[j])
		}
	}
	if len(mm.Min) == 0 {
		*m = MinMax{}
		return nil
	}
	*m = MinMax{min: mm.Min, max: mm.Max}
	return nil
}

type noneMarshal struct {
	Cols int
}

func (n *None) MarshalJSON() ([]byte, error) {
	return json.Marshal(noneMarshal{Cols: n.cols})
}

func (n *None) UnmarshalJSON(data []byte) error {
	var nm noneMarshal
	if err := json.Unmarshal(data, &nm); err != nil {
		return err
	}
	if nm.Cols < 0 {
		return fmt.Errorf("scale: negative column count %v", nm.Cols)
	}
	n.cols = nm.Cols
	return nil
}
