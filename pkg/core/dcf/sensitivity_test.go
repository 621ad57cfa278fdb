package dcf

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
)

func TestGridShapeAndAxes(t *testing.T) {
	grid, err := GrowthMarginGrid(fixtureBase(), fixtureParams())
	if err != nil {
		t.Fatal(err)
	}

	if len(grid.GrowthRates) != 11 || len(grid.Margins) != 11 || len(grid.Prices) != 11 {
		t.Fatalf("expected an 11x11 grid, got %dx%d", len(grid.Prices), len(grid.Margins))
	}
	for _, row := range grid.Prices {
		if len(row) != 11 {
			t.Fatalf("ragged grid row of length %d", len(row))
		}
	}

	approx(t, "growth axis low end", grid.GrowthRates[0], 14.3-5, 1e-12)
	approx(t, "growth axis high end", grid.GrowthRates[10], 14.3+5, 1e-12)
	approx(t, "margin axis low end", grid.Margins[0], 69.5-5, 1e-12)
	approx(t, "margin axis step", grid.Margins[6]-grid.Margins[5], 1.0, 1e-12)
}

func TestGridCenterMatchesSingleRun(t *testing.T) {
	base := fixtureBase()
	params := fixtureParams()

	single, err := Valuate(base, params)
	if err != nil {
		t.Fatal(err)
	}
	grid, err := GrowthMarginGrid(base, params)
	if err != nil {
		t.Fatal(err)
	}

	center := grid.Prices[5][5]
	approx(t, "center cell vs single run", center, single.PricePerShare, 1e-6)
}

func TestGridMonotonicAlongBothAxes(t *testing.T) {
	grid, err := GrowthMarginGrid(fixtureBase(), fixtureParams())
	if err != nil {
		t.Fatal(err)
	}

	// Down a column: higher growth must not lower the price.
	for i := 1; i < 11; i++ {
		if grid.Prices[i][5] < grid.Prices[i-1][5] {
			t.Errorf("price fell as growth rose at row %d: %.2f < %.2f", i, grid.Prices[i][5], grid.Prices[i-1][5])
		}
	}
	// Across a row: higher margin must not lower the price.
	for j := 1; j < 11; j++ {
		if grid.Prices[5][j] < grid.Prices[5][j-1] {
			t.Errorf("price fell as margin rose at col %d: %.2f < %.2f", j, grid.Prices[5][j], grid.Prices[5][j-1])
		}
	}
}

func TestWACCSeriesShapeAndMonotonicity(t *testing.T) {
	base := fixtureBase()
	params := fixtureParams()

	series, err := WACCSeries(base, params)
	if err != nil {
		t.Fatal(err)
	}

	if len(series.WACCs) != 11 || len(series.Prices) != 11 {
		t.Fatalf("expected 11 points, got %d", len(series.WACCs))
	}
	approx(t, "wacc axis low end", series.WACCs[0], 8-2.5, 1e-12)
	approx(t, "wacc axis high end", series.WACCs[10], 8+2.5, 1e-12)

	single, err := Valuate(base, params)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, "base index cell", series.Prices[series.BaseIndex], single.PricePerShare, 1e-6)

	for i := 1; i < 11; i++ {
		if series.Prices[i] >= series.Prices[i-1] {
			t.Errorf("price must strictly fall as WACC rises: point %d %.2f >= %.2f", i, series.Prices[i], series.Prices[i-1])
		}
	}
}

func TestSweepAbortsOnConfigurationError(t *testing.T) {
	params := fixtureParams()
	params.TerminalWACC = params.RiskFreeRate

	if _, err := GrowthMarginGrid(fixtureBase(), params); err == nil {
		t.Error("grid sweep must abort when every cell would fail identically")
	}
	if _, err := WACCSeries(fixtureBase(), params); err == nil {
		t.Error("WACC sweep must abort when every cell would fail identically")
	}
}

func TestDegenerateCellHoldsNaNNotError(t *testing.T) {
	base := fixtureBase()
	base.OutstandingShares = 0
	grid, err := GrowthMarginGrid(base, fixtureParams())
	if err != nil {
		t.Fatalf("per-cell degenerate inputs must not abort the sweep: %v", err)
	}
	if !math.IsNaN(grid.Prices[0][0]) {
		t.Errorf("unavailable price should surface as NaN in the grid, got %f", grid.Prices[0][0])
	}
}

func TestDegenerateCellsCrossJSONAsNull(t *testing.T) {
	base := fixtureBase()
	base.OutstandingShares = 0

	grid, err := GrowthMarginGrid(base, fixtureParams())
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	buf, err := json.Marshal(grid)
	if err != nil {
		t.Fatalf("a grid with degenerate cells must still marshal: %v", err)
	}
	if !bytes.Contains(buf, []byte("null")) {
		t.Error("degenerate cells should encode as null")
	}
	var gotGrid SensitivityGrid
	if err := json.Unmarshal(buf, &gotGrid); err != nil {
		t.Fatalf("unmarshal grid: %v", err)
	}
	if !math.IsNaN(gotGrid.Prices[0][0]) {
		t.Errorf("null cell should decode back to NaN, got %f", gotGrid.Prices[0][0])
	}

	series, err := WACCSeries(base, fixtureParams())
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	buf, err = json.Marshal(series)
	if err != nil {
		t.Fatalf("a series with degenerate cells must still marshal: %v", err)
	}
	var gotSeries WACCSensitivity
	if err := json.Unmarshal(buf, &gotSeries); err != nil {
		t.Fatalf("unmarshal series: %v", err)
	}
	if !math.IsNaN(gotSeries.Prices[0]) {
		t.Errorf("null cell should decode back to NaN, got %f", gotSeries.Prices[0])
	}
	if gotSeries.BaseIndex != series.BaseIndex {
		t.Errorf("base index lost in transit: got %d, want %d", gotSeries.BaseIndex, series.BaseIndex)
	}
}
