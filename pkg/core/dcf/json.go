package dcf

import (
	"encoding/json"
	"math"
)

// A degenerate sensitivity cell is held as NaN in memory, but JSON has no
// NaN literal and encoding/json refuses to emit one. On the wire those
// cells travel as null and are restored to NaN on the way back in.

type sensitivityGridJSON struct {
	GrowthRates []float64    `json:"growth_rates"`
	Margins     []float64    `json:"margins"`
	Prices      [][]*float64 `json:"prices"`
}

func (g SensitivityGrid) MarshalJSON() ([]byte, error) {
	out := sensitivityGridJSON{GrowthRates: g.GrowthRates, Margins: g.Margins}
	out.Prices = make([][]*float64, len(g.Prices))
	for i, row := range g.Prices {
		out.Prices[i] = nanToNull(row)
	}
	return json.Marshal(out)
}

func (g *SensitivityGrid) UnmarshalJSON(data []byte) error {
	var raw sensitivityGridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.GrowthRates = raw.GrowthRates
	g.Margins = raw.Margins
	g.Prices = make([][]float64, len(raw.Prices))
	for i, row := range raw.Prices {
		g.Prices[i] = nullToNaN(row)
	}
	return nil
}

type waccSensitivityJSON struct {
	WACCs     []float64  `json:"waccs"`
	Prices    []*float64 `json:"prices"`
	BaseIndex int        `json:"base_index"`
}

func (s WACCSensitivity) MarshalJSON() ([]byte, error) {
	return json.Marshal(waccSensitivityJSON{
		WACCs:     s.WACCs,
		Prices:    nanToNull(s.Prices),
		BaseIndex: s.BaseIndex,
	})
}

func (s *WACCSensitivity) UnmarshalJSON(data []byte) error {
	var raw waccSensitivityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.WACCs = raw.WACCs
	s.Prices = nullToNaN(raw.Prices)
	s.BaseIndex = raw.BaseIndex
	return nil
}

func nanToNull(prices []float64) []*float64 {
	out := make([]*float64, len(prices))
	for i, p := range prices {
		if !math.IsNaN(p) {
			out[i] = floatPtr(p)
		}
	}
	return out
}

func nullToNaN(cells []*float64) []float64 {
	out := make([]float64, len(cells))
	for i, c := range cells {
		if c == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *c
		}
	}
	return out
}
