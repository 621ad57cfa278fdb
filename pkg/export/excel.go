// Package export writes a valuation run into an Excel workbook. The workbook
// is built from scratch each time so downloads never depend on a template
// file shipping alongside the binary.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"dcf_valuation/pkg/core/dcf"
	"dcf_valuation/pkg/core/fmp"
)

const (
	sheetAssumptions = "Input and sensitivity"
	sheetValuation   = "Valuation output"
	sheetHistory     = "Historical Financial Data"
)

// Report bundles everything one valuation run produced.
type Report struct {
	Ticker  string
	Profile dcf.CompanyProfile
	Params  dcf.ValuationParams
	WACC    dcf.WACCResult
	Result  *dcf.ValuationResult
	Grid    *dcf.SensitivityGrid
	Series  *dcf.WACCSensitivity
	History []fmp.YearSummary
	Metrics []fmp.KeyMetrics
}

// Workbook renders the report into a new workbook. Callers own the returned
// file and must Close it.
func Workbook(r Report) (*excelize.File, error) {
	if r.Result == nil {
		return nil, fmt.Errorf("EXPORT_NO_RESULT: valuation result is nil")
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetAssumptions)
	if _, err := f.NewSheet(sheetValuation); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetHistory); err != nil {
		return nil, err
	}

	if err := writeAssumptions(f, r); err != nil {
		return nil, err
	}
	if err := writeValuation(f, r); err != nil {
		return nil, err
	}
	if err := writeHistory(f, r.History, r.Metrics); err != nil {
		return nil, err
	}
	return f, nil
}

// Write renders the report and streams the workbook to w.
func Write(w io.Writer, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// WriteFile renders the report and saves the workbook at path.
func WriteFile(path string, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Printf("[EXPORT] Writing workbook to %s\n", path)
	return f.SaveAs(path)
}

func writeAssumptions(f *excelize.File, r Report) error {
	p := r.Params
	rows := []struct {
		label string
		value interface{}
	}{
		{"Base year", p.BaseYear},
		{"Revenue growth year 1", p.RevenueGrowth1 / 100},
		{"Revenue growth years 2-5", p.RevenueGrowth2 / 100},
		{"Risk-free rate", p.RiskFreeRate},
		{"Target EBIT margin", p.EBITMargin / 100},
		{"Years to converge", p.Convergence},
		{"Revenue / IC years 1-2", p.RevenueToIC1},
		{"Revenue / IC years 3-5", p.RevenueToIC2},
		{"Revenue / IC years 6-10", p.RevenueToIC3},
		{"WACC", p.WACC / 100},
		{"Terminal WACC", p.TerminalWACC},
		{"RONIC", p.RONIC},
		{"Tax rate", p.TaxRate / 100},
	}
	if err := setCell(f, sheetAssumptions, 1, 1, fmt.Sprintf("%s (%s) valuation inputs", r.Profile.CompanyName, r.Ticker)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setCell(f, sheetAssumptions, i+2, 1, row.label); err != nil {
			return err
		}
		if err := setCell(f, sheetAssumptions, i+2, 2, row.value); err != nil {
			return err
		}
	}

	waccRows := []struct {
		label string
		value float64
	}{
		{"Risk-free rate", r.WACC.RiskFreeRate},
		{"Cost of debt", r.WACC.CostOfDebt},
		{"Total equity risk premium", r.WACC.EquityRiskPremium},
		{"Beta", r.WACC.Beta},
		{"Cost of equity", r.WACC.CostOfEquity},
		{"Calculated WACC", r.WACC.WACC},
	}
	start := len(rows) + 3
	if err := setCell(f, sheetAssumptions, start, 1, "WACC calculation"); err != nil {
		return err
	}
	for i, row := range waccRows {
		if err := setCell(f, sheetAssumptions, start+i+1, 1, row.label); err != nil {
			return err
		}
		if err := setCell(f, sheetAssumptions, start+i+1, 2, row.value); err != nil {
			return err
		}
	}

	if err := writeGrid(f, r.Grid); err != nil {
		return err
	}
	return writeSeries(f, r.Series)
}

// writeGrid lays the growth x margin matrix out to the right of the inputs,
// margins across the top, growth rates down the side.
func writeGrid(f *excelize.File, grid *dcf.SensitivityGrid) error {
	if grid == nil {
		return nil
	}
	const topRow, leftCol = 2, 5
	if err := setCell(f, sheetAssumptions, topRow-1, leftCol, "Price per share: growth vs margin"); err != nil {
		return err
	}
	for j, m := range grid.Margins {
		if err := setCell(f, sheetAssumptions, topRow, leftCol+1+j, m/100); err != nil {
			return err
		}
	}
	for i, g := range grid.GrowthRates {
		if err := setCell(f, sheetAssumptions, topRow+1+i, leftCol, g/100); err != nil {
			return err
		}
		for j, price := range grid.Prices[i] {
			if err := setCell(f, sheetAssumptions, topRow+1+i, leftCol+1+j, gridCell(price)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSeries(f *excelize.File, series *dcf.WACCSensitivity) error {
	if series == nil {
		return nil
	}
	const topRow, leftCol = 16, 5
	if err := setCell(f, sheetAssumptions, topRow, leftCol, "WACC Sensitivity Analysis"); err != nil {
		return err
	}
	if err := setCell(f, sheetAssumptions, topRow+1, leftCol, "WACC"); err != nil {
		return err
	}
	if err := setCell(f, sheetAssumptions, topRow+2, leftCol, "Price / Share"); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for j, w := range series.WACCs {
		col := leftCol + 1 + j
		if err := setCell(f, sheetAssumptions, topRow+1, col, w/100); err != nil {
			return err
		}
		if err := setCell(f, sheetAssumptions, topRow+2, col, gridCell(series.Prices[j])); err != nil {
			return err
		}
		if j == series.BaseIndex {
			top, _ := excelize.CoordinatesToCellName(col, topRow+1)
			bottom, _ := excelize.CoordinatesToCellName(col, topRow+2)
			if err := f.SetCellStyle(sheetAssumptions, top, bottom, bold); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeValuation(f *excelize.File, r Report) error {
	res := r.Result
	title := fmt.Sprintf("%s - in %s, millions", r.Profile.CompanyName, res.ReportedCurrency)
	if err := setCell(f, sheetValuation, 1, 1, title); err != nil {
		return err
	}

	rows := res.Table.Rows
	if err := setCell(f, sheetValuation, 2, 1, "Year"); err != nil {
		return err
	}
	for i, row := range rows {
		label := interface{}(row.Year)
		switch i {
		case 0:
			label = "Base"
		case len(rows) - 1:
			label = "Terminal"
		}
		if err := setCell(f, sheetValuation, 2, i+2, label); err != nil {
			return err
		}
	}

	metrics := []struct {
		label string
		value func(dcf.ForecastRow) interface{}
	}{
		{"Revenue growth", func(r dcf.ForecastRow) interface{} { return r.RevenueGrowth }},
		{"Revenue", func(r dcf.ForecastRow) interface{} { return r.Revenue }},
		{"EBIT margin", func(r dcf.ForecastRow) interface{} { return r.EBITMargin }},
		{"EBIT", func(r dcf.ForecastRow) interface{} { return r.EBIT }},
		{"Tax rate", func(r dcf.ForecastRow) interface{} { return r.TaxRate }},
		{"EBIT(1-t)", func(r dcf.ForecastRow) interface{} { return r.AfterTaxEBIT }},
		{"Reinvestment", func(r dcf.ForecastRow) interface{} { return r.Reinvestment }},
		{"FCFF", func(r dcf.ForecastRow) interface{} { return r.FCFF }},
		{"WACC", func(r dcf.ForecastRow) interface{} { return r.WACC }},
		{"Discount factor", func(r dcf.ForecastRow) interface{} {
			if r.DiscountFactor == nil {
				return nil
			}
			return *r.DiscountFactor
		}},
		{"PV (FCFF)", func(r dcf.ForecastRow) interface{} {
			if r.PV == nil {
				return nil
			}
			return *r.PV
		}},
	}
	for mi, m := range metrics {
		if err := setCell(f, sheetValuation, mi+3, 1, m.label); err != nil {
			return err
		}
		for i, row := range rows {
			if err := setCell(f, sheetValuation, mi+3, i+2, m.value(row)); err != nil {
				return err
			}
		}
	}

	waterfall := []struct {
		label string
		value interface{}
	}{
		{"PV (FCFF over next 10 years)", res.PVForecast},
		{"Terminal value", res.TerminalValue},
		{"PV (Terminal value)", res.PVTerminal},
		{"(+) Cash & Equivalents", res.Cash},
		{"(+) Total Investments", res.TotalInvestments},
		{"Enterprise Value", res.EnterpriseValue},
		{"(-) Total Debt", res.TotalDebt},
		{"(-) Minority Interest", res.MinorityInterest},
		{"Equity Value", res.EquityValue},
		{"Outstanding Shares", res.OutstandingShares},
	}
	start := len(metrics) + 4
	for i, row := range waterfall {
		if err := setCell(f, sheetValuation, start+i, 1, row.label); err != nil {
			return err
		}
		if err := setCell(f, sheetValuation, start+i, 2, row.value); err != nil {
			return err
		}
	}
	priceRow := start + len(waterfall)
	if err := setCell(f, sheetValuation, priceRow, 1, fmt.Sprintf("Price per share (%s)", res.ReportedCurrency)); err != nil {
		return err
	}
	if res.PriceAvailable {
		if err := setCell(f, sheetValuation, priceRow, 2, res.PricePerShare); err != nil {
			return err
		}
	} else {
		if err := setCell(f, sheetValuation, priceRow, 2, "N/A"); err != nil {
			return err
		}
	}
	return nil
}

func writeHistory(f *excelize.File, history []fmp.YearSummary, metrics []fmp.KeyMetrics) error {
	metricsByYear := make(map[string]fmp.KeyMetrics, len(metrics))
	for _, m := range metrics {
		metricsByYear[m.CalendarYear] = m
	}

	headers := []string{"Year", "Revenue", "Revenue Growth (%)", "EBIT", "EBIT Margin (%)",
		"Tax Rate (%)", "Invested Capital", "Revenue / IC", "Reinvestment",
		"ROIC (%)", "ROE (%)", "Dividend Yield (%)", "Payout Ratio (%)"}
	for j, h := range headers {
		if err := setCell(f, sheetHistory, 1, j+1, h); err != nil {
			return err
		}
	}
	for i, y := range history {
		m := metricsByYear[fmt.Sprintf("%d", y.Year)]
		values := []interface{}{y.Year, y.Revenue, y.RevenueGrowth, y.EBIT, y.EBITMargin,
			y.TaxRate, y.InvestedCapital, y.RevenueToIC, y.Reinvestment,
			m.ROIC * 100, m.ROE * 100, m.DividendYield * 100, m.PayoutRatio * 100}
		for j, v := range values {
			if err := setCell(f, sheetHistory, i+2, j+1, v); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheetHistory, "A", "M", 18)
}

// gridCell keeps NaN out of the workbook; Excel has no representation for it.
func gridCell(price float64) interface{} {
	if math.IsNaN(price) {
		return "N/A"
	}
	return price
}

func setCell(f *excelize.File, sheet string, row, col int, value interface{}) error {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, axis, value)
}
