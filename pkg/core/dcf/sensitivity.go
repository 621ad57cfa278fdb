package dcf

import "math"

// Sweep geometry. Both sweeps are symmetric odd-count ranges centered on the
// base parameter, so the middle cell always reproduces the single-run price.
const (
	gridSpan     = 5   // growth/margin: +/-5pp in 1pp steps -> 11 points
	waccSpan     = 5   // wacc: 5 steps either side
	waccStep     = 0.5 // pp
	gridPoints   = 2*gridSpan + 1
	waccPoints   = 2*waccSpan + 1
	gridStepSize = 1.0 // pp
)

// GrowthMarginGrid sweeps years-2-5 revenue growth and target EBIT margin
// across +/-5 percentage points around the base assumptions and prices every
// combination. Each cell is an independent full forecast-and-aggregate run;
// nothing is shared or reused between cells. A terminal-spread configuration
// error aborts the whole sweep since every cell would fail identically;
// per-cell degenerate inputs leave NaN in that cell only.
func GrowthMarginGrid(base BaseYearData, params ValuationParams) (*SensitivityGrid, error) {
	if err := CheckTerminalSpread(params); err != nil {
		return nil, err
	}

	grid := &SensitivityGrid{
		GrowthRates: make([]float64, 0, gridPoints),
		Margins:     make([]float64, 0, gridPoints),
		Prices:      make([][]float64, 0, gridPoints),
	}
	for i := -gridSpan; i <= gridSpan; i++ {
		grid.GrowthRates = append(grid.GrowthRates, params.RevenueGrowth2+float64(i)*gridStepSize)
		grid.Margins = append(grid.Margins, params.EBITMargin+float64(i)*gridStepSize)
	}

	for _, growth := range grid.GrowthRates {
		row := make([]float64, 0, gridPoints)
		for _, margin := range grid.Margins {
			cell := params
			cell.RevenueGrowth2 = growth
			cell.EBITMargin = margin

			result, err := Valuate(base, cell)
			if err != nil {
				return nil, err
			}
			row = append(row, priceOrNaN(result))
		}
		grid.Prices = append(grid.Prices, row)
	}

	return grid, nil
}

// WACCSeries prices the valuation across an 11-point WACC range, 0.5pp steps
// either side of the base rate. Same independence guarantees as
// GrowthMarginGrid.
func WACCSeries(base BaseYearData, params ValuationParams) (*WACCSensitivity, error) {
	if err := CheckTerminalSpread(params); err != nil {
		return nil, err
	}

	series := &WACCSensitivity{
		WACCs:     make([]float64, 0, waccPoints),
		Prices:    make([]float64, 0, waccPoints),
		BaseIndex: waccSpan,
	}

	for i := -waccSpan; i <= waccSpan; i++ {
		wacc := params.WACC + float64(i)*waccStep
		cell := params
		cell.WACC = wacc

		result, err := Valuate(base, cell)
		if err != nil {
			return nil, err
		}
		series.WACCs = append(series.WACCs, wacc)
		series.Prices = append(series.Prices, priceOrNaN(result))
	}

	return series, nil
}

func priceOrNaN(result *ValuationResult) float64 {
	if !result.PriceAvailable {
		return math.NaN()
	}
	return result.PricePerShare
}
