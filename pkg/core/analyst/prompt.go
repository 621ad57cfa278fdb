package analyst

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a senior equity research analyst specialized in
discounted-cash-flow valuation. You ground every assumption in management
guidance, analyst consensus and industry benchmarks, and you always cite your
sources. You answer with a single JSON code block matching the requested
schema exactly.`

// buildPrompt assembles the analysis request: company identity, the
// calculated reference rates, the condensed history table and the output
// schema. Each parameter must come back with a value and the reasoning
// behind it.
func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Suggest DCF valuation parameters for %s (%s).\n\n", req.Profile.CompanyName, req.Ticker)
	fmt.Fprintf(&b, "Before answering, search for: %s earnings guidance and revenue outlook; analyst consensus revenue forecasts; industry EBIT margin benchmarks; third-party WACC estimates.\n\n", req.Ticker)

	fmt.Fprintf(&b, "## Company\n")
	fmt.Fprintf(&b, "- Country: %s\n", req.Profile.Country)
	fmt.Fprintf(&b, "- Beta: %.2f\n", req.Profile.Beta)
	fmt.Fprintf(&b, "- Market cap: %.0f million %s\n", req.Profile.MarketCap, req.Profile.Currency)
	fmt.Fprintf(&b, "- Valuation base year: %d\n\n", req.Base.Year)

	fmt.Fprintf(&b, "## Calculated reference rates\n")
	fmt.Fprintf(&b, "- Model WACC: %.1f%%\n", req.CalculatedWACC*100)
	fmt.Fprintf(&b, "- Historical average effective tax rate: %.1f%%\n\n", req.CalculatedTax*100)

	fmt.Fprintf(&b, "## Historical financials (millions %s, latest first)\n", req.Base.ReportedCurrency)
	fmt.Fprintf(&b, "%-6s %14s %14s %9s %9s %16s %10s %14s %9s\n",
		"Year", "Revenue", "EBIT", "Margin%", "Tax%", "InvestedCapital", "Rev/IC", "Reinvestment", "Growth%")
	for _, y := range req.History {
		fmt.Fprintf(&b, "%-6d %14.0f %14.0f %9.1f %9.1f %16.0f %10.2f %14.0f %9.1f\n",
			y.Year, y.Revenue, y.EBIT, y.EBITMargin, y.TaxRate, y.InvestedCapital, y.RevenueToIC, y.Reinvestment, y.RevenueGrowth)
	}

	b.WriteString(`
## Required output

Respond with exactly one JSON code block. Every parameter is an object with
"value" and "reasoning". Growth, margin, tax and WACC values are whole-number
percentages (5 means 5%); the revenue-to-invested-capital ratios are raw
multipliers. For each ratio, first check whether the historical Rev/IC column
is stable (within about +/-20%); if so anchor on its average, otherwise back
the ratio out of historical reinvestment levels, and say which method you
used. ronic_match_wacc is true when competition is expected to erode excess
returns beyond year 10.

` + "```json" + `
{
  "revenue_growth_1": {"value": 0, "reasoning": ""},
  "revenue_growth_2": {"value": 0, "reasoning": ""},
  "ebit_margin": {"value": 0, "reasoning": ""},
  "convergence": {"value": 0, "reasoning": ""},
  "revenue_invested_capital_ratio_1": {"value": 0, "reasoning": ""},
  "revenue_invested_capital_ratio_2": {"value": 0, "reasoning": ""},
  "revenue_invested_capital_ratio_3": {"value": 0, "reasoning": ""},
  "tax_rate": {"value": 0, "reasoning": ""},
  "wacc": {"value": 0, "reasoning": ""},
  "ronic_match_wacc": {"value": true, "reasoning": ""}
}
` + "```" + `
`)

	return b.String()
}
