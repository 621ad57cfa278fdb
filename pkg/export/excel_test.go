package export

import (
	"bytes"
	"math"
	"strconv"
	"testing"

	"dcf_valuation/pkg/core/dcf"
	"dcf_valuation/pkg/core/fmp"
)

func sampleReport(t *testing.T) Report {
	t.Helper()
	base := dcf.BaseYearData{
		Year:              2024,
		Revenue:           178576,
		EBIT:              124225,
		AverageTaxRate:    0.25,
		InvestedCapital:   85017,
		Cash:              175407,
		TotalInvestments:  5543,
		TotalDebt:         263,
		MinorityInterest:  8635,
		OutstandingShares: 1252270215,
		ReportedCurrency:  "CNY",
	}
	params := dcf.ValuationParams{
		BaseYear:       2024,
		RevenueGrowth1: 15,
		RevenueGrowth2: 14.3,
		EBITMargin:     69.5,
		Convergence:    5,
		RevenueToIC1:   2.1,
		RevenueToIC2:   3.03,
		RevenueToIC3:   3.03,
		TaxRate:        25,
		WACC:           8,
		TerminalWACC:   0.08,
		RONIC:          0.08,
		RiskFreeRate:   0.03,
	}
	result, err := dcf.Valuate(base, params)
	if err != nil {
		t.Fatalf("Valuate: %v", err)
	}
	grid, err := dcf.GrowthMarginGrid(base, params)
	if err != nil {
		t.Fatalf("GrowthMarginGrid: %v", err)
	}
	series, err := dcf.WACCSeries(base, params)
	if err != nil {
		t.Fatalf("WACCSeries: %v", err)
	}
	return Report{
		Ticker:  "600519.SS",
		Profile: dcf.CompanyProfile{CompanyName: "Kweichow Moutai", MarketCap: 1900000, Beta: 0.4, Country: "CN", Currency: "CNY"},
		Params:  params,
		WACC: dcf.WACCResult{
			WACC: 0.08, RiskFreeRate: 0.03, EquityRiskPremium: 0.0572,
			Beta: 0.4, CostOfDebt: 0.032, CostOfEquity: 0.0529,
			MarginalTaxRate: 0.25, DebtWeight: 0.0001, EquityWeight: 0.9999,
		},
		Result: result,
		Grid:   grid,
		Series: series,
		History: []fmp.YearSummary{
			{Year: 2023, Revenue: 150560, EBIT: 101882, EBITMargin: 67.7, TaxRate: 25.3,
				InvestedCapital: 74151, RevenueToIC: 2.03, Reinvestment: 9800, RevenueGrowth: 18.0},
			{Year: 2024, Revenue: 178576, EBIT: 124225, EBITMargin: 69.6, TaxRate: 25.0,
				InvestedCapital: 85017, RevenueToIC: 2.10, Reinvestment: 13000, RevenueGrowth: 18.6},
		},
		Metrics: []fmp.KeyMetrics{
			{CalendarYear: "2024", ROIC: 0.32, ROE: 0.34, DividendYield: 0.035, PayoutRatio: 0.75},
		},
	}
}

func TestWorkbookSheets(t *testing.T) {
	f, err := Workbook(sampleReport(t))
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	for _, name := range []string{sheetAssumptions, sheetValuation, sheetHistory} {
		if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
			t.Errorf("missing sheet %q (idx=%d, err=%v)", name, idx, err)
		}
	}
}

func TestWorkbookAssumptionsAsFractions(t *testing.T) {
	f, err := Workbook(sampleReport(t))
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	// Revenue growth year 1 lands in B3 as a fraction of 15%.
	got, err := f.GetCellValue(sheetAssumptions, "B3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	v, err := strconv.ParseFloat(got, 64)
	if err != nil {
		t.Fatalf("B3 not numeric: %q", got)
	}
	if math.Abs(v-0.15) > 1e-9 {
		t.Errorf("B3 = %v, want 0.15", v)
	}
}

func TestWorkbookValuationHeader(t *testing.T) {
	f, err := Workbook(sampleReport(t))
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetValuation, "A1")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	want := "Kweichow Moutai - in CNY, millions"
	if got != want {
		t.Errorf("A1 = %q, want %q", got, want)
	}

	// Base column label, then 10 forecast years, then the terminal column.
	if got, _ := f.GetCellValue(sheetValuation, "B2"); got != "Base" {
		t.Errorf("B2 = %q, want Base", got)
	}
	if got, _ := f.GetCellValue(sheetValuation, "M2"); got != "Terminal" {
		t.Errorf("M2 = %q, want Terminal", got)
	}
}

func TestWorkbookHistoryRows(t *testing.T) {
	f, err := Workbook(sampleReport(t))
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(sheetHistory, "A1"); got != "Year" {
		t.Errorf("history header A1 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetHistory, "A3"); got != "2024" {
		t.Errorf("history A3 = %q, want 2024", got)
	}
	// ROIC column for 2024 picks up the matching key-metrics record.
	if got, _ := f.GetCellValue(sheetHistory, "J3"); got != "32" {
		t.Errorf("history J3 (ROIC %%) = %q, want 32", got)
	}
}

func TestWriteStreams(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty workbook stream")
	}
	// xlsx files are zip archives.
	if head := buf.Bytes()[:2]; head[0] != 'P' || head[1] != 'K' {
		t.Errorf("stream does not start with zip magic: % x", head)
	}
}

func TestWorkbookNilResult(t *testing.T) {
	r := sampleReport(t)
	r.Result = nil
	if _, err := Workbook(r); err == nil {
		t.Fatal("expected error for nil result")
	}
}
