// Package render formats engine output for the terminal. It consumes the
// engine's result records only and never reaches back into the model.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"dcf_valuation/pkg/core/dcf"
)

// ForecastTable prints the projection transposed: one line per metric, one
// column per year, the way analysts read a DCF tab.
func ForecastTable(w io.Writer, companyName string, result *dcf.ValuationResult) {
	fmt.Fprintf(w, "\n%s Free Cashflow Forecast - 10 years, in millions:\n", companyName)

	rows := result.Table.Rows
	labels := make([]string, len(rows))
	for i := range rows {
		switch i {
		case 0:
			labels[i] = "Base"
		case len(rows) - 1:
			labels[i] = "Terminal"
		default:
			labels[i] = fmt.Sprintf("%d", rows[i].Year)
		}
	}

	const nameWidth = 20
	const colWidth = 10

	fmt.Fprintf(w, "%-*s", nameWidth, "")
	for _, l := range labels {
		fmt.Fprintf(w, "%*s", colWidth, l)
	}
	fmt.Fprintln(w)

	line := func(name string, format func(r dcf.ForecastRow) string) {
		fmt.Fprintf(w, "%-*s", nameWidth, name)
		for _, r := range rows {
			fmt.Fprintf(w, "%*s", colWidth, format(r))
		}
		fmt.Fprintln(w)
	}

	line("Revenue Growth", func(r dcf.ForecastRow) string { return pct(r.RevenueGrowth) })
	line("Revenue", func(r dcf.ForecastRow) string { return money(r.Revenue) })
	line("EBIT Margin", func(r dcf.ForecastRow) string { return pct(r.EBITMargin) })
	line("EBIT", func(r dcf.ForecastRow) string { return money(r.EBIT) })
	line("Tax Rate", func(r dcf.ForecastRow) string { return pct(r.TaxRate) })
	line("EBIT(1-t)", func(r dcf.ForecastRow) string { return money(r.AfterTaxEBIT) })
	line("Reinvestment", func(r dcf.ForecastRow) string { return money(r.Reinvestment) })
	line("FCFF", func(r dcf.ForecastRow) string { return money(r.FCFF) })
	line("WACC", func(r dcf.ForecastRow) string { return pct(r.WACC) })
	line("Discount Factor", func(r dcf.ForecastRow) string {
		if r.DiscountFactor == nil {
			return "N/A"
		}
		return fmt.Sprintf("%.3f", *r.DiscountFactor)
	})
	line("PV (FCFF)", func(r dcf.ForecastRow) string {
		if r.PV == nil {
			return "N/A"
		}
		return money(*r.PV)
	})
}

// ValuationSummary prints the waterfall from PV of cash flows down to price
// per share.
func ValuationSummary(w io.Writer, result *dcf.ValuationResult) {
	fmt.Fprintf(w, "\nValuation Calculation - in millions:\n")

	priceLabel := "Equity Price per Share"
	if result.ReportedCurrency != "" {
		priceLabel = fmt.Sprintf("Equity Price per Share (%s)", result.ReportedCurrency)
	}
	price := "N/A"
	if result.PriceAvailable {
		price = fmt.Sprintf("%.2f", result.PricePerShare)
	}

	lines := []struct {
		label string
		value string
	}{
		{"PV (FCFF over next 10 years)", money(result.PVForecast)},
		{"PV (Terminal value)", money(result.PVTerminal)},
		{"+ Cash & Cash Equivalents", money(result.Cash)},
		{"+ Total Investments", money(result.TotalInvestments)},
		{"Enterprise Value", money(result.EnterpriseValue)},
		{"- Total Debt", money(result.TotalDebt)},
		{"- Minority Interest", money(result.MinorityInterest)},
		{"Equity Value", money(result.EquityValue)},
		{"Outstanding Shares", money(result.OutstandingShares)},
		{priceLabel, price},
	}

	labelWidth, valueWidth := 0, 0
	for _, l := range lines {
		if len(l.label) > labelWidth {
			labelWidth = len(l.label)
		}
		if len(l.value) > valueWidth {
			valueWidth = len(l.value)
		}
	}
	for _, l := range lines {
		fmt.Fprintf(w, "%-*s : %*s\n", labelWidth, l.label, valueWidth, l.value)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}

// WACCBreakdown prints every intermediate of the discount-rate calculation.
func WACCBreakdown(w io.Writer, res dcf.WACCResult) {
	fmt.Fprintf(w, "\nWACC Calculation Parameters:\n")

	lines := []struct {
		label string
		value string
	}{
		{"Risk-free rate", pct(res.RiskFreeRate)},
		{"Total equity risk premium", pct(res.EquityRiskPremium)},
		{"Beta", fmt.Sprintf("%.1f", res.Beta)},
		{"Cost of debt", pct(res.CostOfDebt)},
		{"Cost of equity", pct(res.CostOfEquity)},
		{"Marginal tax rate", pct(res.MarginalTaxRate)},
		{"Debt weighting", pct(res.DebtWeight)},
		{"Equity weighting", pct(res.EquityWeight)},
		{"Calculated WACC", pct(res.WACC)},
	}

	labelWidth := 0
	for _, l := range lines {
		if len(l.label) > labelWidth {
			labelWidth = len(l.label)
		}
	}
	for _, l := range lines {
		fmt.Fprintf(w, "%-*s : %8s\n", labelWidth, l.label, l.value)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}

// SensitivityGrid prints the growth x margin price matrix, growth down the
// side, margin across the top.
func SensitivityGrid(w io.Writer, grid *dcf.SensitivityGrid) {
	fmt.Fprintf(w, "\nSensitivity Analysis (Price per Share):\n")
	fmt.Fprintf(w, "%-12s", "Growth\\Margin")
	for _, m := range grid.Margins {
		fmt.Fprintf(w, "%10s", fmt.Sprintf("%.0f%%", m))
	}
	fmt.Fprintln(w)

	for i, g := range grid.GrowthRates {
		fmt.Fprintf(w, "%-12s", fmt.Sprintf("%.0f%%", g))
		for _, p := range grid.Prices[i] {
			fmt.Fprintf(w, "%10s", cell(p))
		}
		fmt.Fprintln(w)
	}
}

// WACCSeries prints the one-dimensional WACC sweep.
func WACCSeries(w io.Writer, series *dcf.WACCSensitivity) {
	fmt.Fprintf(w, "\nWACC Sensitivity (Price per Share):\n")
	for i, wacc := range series.WACCs {
		marker := " "
		if i == series.BaseIndex {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %5.1f%% : %10s\n", marker, wacc, cell(series.Prices[i]))
	}
}

func cell(price float64) string {
	if math.IsNaN(price) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", price)
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// money renders a millions figure with thousands separators, no decimals.
func money(f float64) string {
	neg := f < 0
	s := fmt.Sprintf("%.0f", math.Abs(f))
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
