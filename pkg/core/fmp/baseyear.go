package fmp

import (
	"fmt"
	"strconv"

	"dcf_valuation/pkg/core/dcf"
)

const million = 1_000_000

// YearSummary is one historical period condensed to the figures the model
// and the analyst prompt care about. Money in millions, rates in
// whole-number percent, ratios as raw multipliers.
type YearSummary struct {
	Year            int     `json:"year"`
	Revenue         float64 `json:"revenue"`
	EBIT            float64 `json:"ebit"`
	EBITMargin      float64 `json:"ebit_margin"`
	TaxRate         float64 `json:"tax_rate"`
	InvestedCapital float64 `json:"invested_capital"`
	RevenueToIC     float64 `json:"revenue_to_invested_capital"`
	Reinvestment    float64 `json:"reinvestment"`
	RevenueGrowth   float64 `json:"revenue_growth"`
}

// BuildBaseYear condenses raw statement history into the engine's base-year
// record plus a per-period summary for display and AI review. Statements are
// expected latest-first; the latest period becomes the base year. The
// quarterly lag handling (4 periods back for growth comparisons) keeps TTM
// snapshots comparable year over year.
func BuildBaseYear(h *History, profile *Profile, shares *SharesFloat, period string) (dcf.BaseYearData, []YearSummary, error) {
	n := len(h.Income)
	if n == 0 || len(h.Balance) == 0 || len(h.CashFlow) == 0 {
		return dcf.BaseYearData{}, nil, fmt.Errorf("FMP_NO_DATA: empty statement history")
	}
	if len(h.Balance) < n {
		n = len(h.Balance)
	}
	if len(h.CashFlow) < n {
		n = len(h.CashFlow)
	}

	lag := 1
	if period == "quarter" {
		lag = 4
	}

	summaries := make([]YearSummary, 0, n)
	var taxRateSum float64
	for i := 0; i < n; i++ {
		inc := h.Income[i]
		bal := h.Balance[i]
		cf := h.CashFlow[i]

		ebit := adjustedEBIT(inc, profile.Exchange)

		taxRate := 0.0
		if inc.IncomeBeforeTax != 0 {
			taxRate = inc.IncomeTaxExpense / inc.IncomeBeforeTax
		}
		taxRateSum += taxRate

		investedCapital := bal.TotalDebt + bal.TotalEquity - bal.CashAndCashEquivalents - bal.TotalInvestments
		revenueToIC := 0.0
		if investedCapital != 0 {
			revenueToIC = inc.Revenue / investedCapital
		}

		// Net reinvestment: capex plus working-capital build, net of D&A.
		// The provider reports capex and WC changes as signed outflows.
		reinvestment := -cf.InvestmentsInPropertyPlantAndEquipment - cf.ChangeInWorkingCapital - cf.DepreciationAndAmortization

		growth := 0.0
		if i+lag < len(h.Income) && h.Income[i+lag].Revenue != 0 {
			growth = (inc.Revenue - h.Income[i+lag].Revenue) / h.Income[i+lag].Revenue * 100
		}

		year, _ := strconv.Atoi(inc.CalendarYear)
		summaries = append(summaries, YearSummary{
			Year:            year,
			Revenue:         inc.Revenue / million,
			EBIT:            ebit / million,
			EBITMargin:      safeMarginPct(ebit, inc.Revenue),
			TaxRate:         taxRate * 100,
			InvestedCapital: investedCapital / million,
			RevenueToIC:     revenueToIC,
			Reinvestment:    reinvestment / million,
			RevenueGrowth:   growth,
		})
	}

	latest := summaries[0]
	latestBal := h.Balance[0]

	costOfDebt := 0.0
	avgDebt := latestBal.TotalDebt
	if n > 1 {
		avgDebt = (latestBal.TotalDebt + h.Balance[1].TotalDebt) / 2
	}
	if avgDebt != 0 {
		costOfDebt = h.Income[0].InterestExpense / avgDebt * 100
	}

	// Shares float is a separate endpoint and sometimes missing for
	// smaller listings; fall back to the income statement's diluted count.
	outstanding := h.Income[0].WeightedAverageShsOutDil
	if shares != nil && shares.OutstandingShares > 0 {
		outstanding = shares.OutstandingShares
	}

	base := dcf.BaseYearData{
		Year:              latest.Year,
		Revenue:           latest.Revenue,
		EBIT:              latest.EBIT,
		AverageTaxRate:    taxRateSum / float64(n),
		InvestedCapital:   latest.InvestedCapital,
		Cash:              latestBal.CashAndCashEquivalents / million,
		TotalInvestments:  latestBal.TotalInvestments / million,
		TotalDebt:         latestBal.TotalDebt / million,
		MinorityInterest:  latestBal.MinorityInterest / million,
		OutstandingShares: outstanding,
		ReportedCurrency:  h.Income[0].ReportedCurrency,
		RevenueGrowth:     latest.RevenueGrowth,
		Reinvestment:      latest.Reinvestment,
		CostOfDebt:        costOfDebt,
	}
	return base, summaries, nil
}

// adjustedEBIT folds net interest expense back into operating income for
// mainland China listings, where the provider reports it inside operating
// income unlike other exchanges.
func adjustedEBIT(inc IncomeStatement, exchange string) float64 {
	ebit := inc.OperatingIncome
	if exchange == "Shenzhen" || exchange == "Shanghai" {
		ebit += inc.InterestExpense - inc.InterestIncome
	}
	return ebit
}

func safeMarginPct(ebit, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return ebit / revenue * 100
}

// ToCompanyProfile converts the raw provider profile into the engine's
// record, scaling market cap to millions to match the statement unit.
func (p *Profile) ToCompanyProfile() dcf.CompanyProfile {
	return dcf.CompanyProfile{
		CompanyName: p.CompanyName,
		MarketCap:   p.MktCap / million,
		Beta:        p.Beta,
		Country:     p.Country,
		Currency:    p.Currency,
		Exchange:    p.Exchange,
	}
}
