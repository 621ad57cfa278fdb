package dcf

import (
	"fmt"
	"math"
)

// BuildForecast projects the base year forward through ten explicit years
// plus a terminal year. The table is built by explicit recurrence: each row
// depends only on the previous row, the params and the year index, so the
// whole function is deterministic and side-effect free. Parameters are taken
// as given; plausibility checks belong to whoever assembled them.
func BuildForecast(base BaseYearData, params ValuationParams) ForecastTable {
	f := params.fractions()
	rf := params.RiskFreeRate

	rows := make([]ForecastRow, 0, terminalRow+1)
	var warnings []string

	// Row 0: the base year as reported.
	baseMargin := 0.0
	if base.Revenue != 0 {
		baseMargin = base.EBIT / base.Revenue
	} else {
		warnings = append(warnings, "base year revenue is zero, margin set to 0")
	}
	baseAfterTax := base.EBIT * (1 - f.tax)
	baseFCFF := baseAfterTax - base.Reinvestment
	rows = append(rows, ForecastRow{
		Year:           params.BaseYear,
		RevenueGrowth:  base.RevenueGrowth / 100,
		Revenue:        base.Revenue,
		EBITMargin:     baseMargin,
		EBIT:           base.EBIT,
		TaxRate:        f.tax,
		AfterTaxEBIT:   baseAfterTax,
		Reinvestment:   base.Reinvestment,
		FCFF:           baseFCFF,
		WACC:           f.wacc,
		DiscountFactor: floatPtr(1),
		PV:             floatPtr(baseFCFF),
	})

	warned := map[string]bool{}
	for year := 1; year <= terminalRow; year++ {
		prev := rows[year-1]

		// Growth schedule: explicit year 1, compound years 2-5, linear fade
		// to the risk-free rate over years 6-10, perpetuity growth at the
		// risk-free rate in the terminal year.
		var growth float64
		switch {
		case year == 1:
			growth = f.growth1
		case year <= 5:
			growth = f.growth2
		case year <= ForecastYears:
			growth = f.growth2 + (rf-f.growth2)*float64(year-5)/5
		default:
			growth = rf
		}

		// Margin converges from the previous realized margin toward the
		// target, so the interpolation compounds year over year. A
		// non-positive convergence means the target applies immediately.
		margin := f.margin
		if params.Convergence > 0 && float64(year) <= params.Convergence {
			margin = prev.EBITMargin + (f.margin-prev.EBITMargin)*float64(year)/params.Convergence
		}

		revenue := prev.Revenue * (1 + growth)
		ebit := revenue * margin
		afterTax := ebit * (1 - f.tax)

		reinvestment, warn := reinvestmentFor(year, revenue, prev.Revenue, afterTax, params)
		if warn != "" && !warned[warn] {
			warnings = append(warnings, warn)
			warned[warn] = true
		}

		fcff := afterTax - reinvestment

		// Discount rate fades from WACC to terminal WACC over years 6-10
		// on the same schedule as growth.
		var wacc float64
		switch {
		case year <= 5:
			wacc = f.wacc
		case year <= ForecastYears:
			wacc = f.wacc + (params.TerminalWACC-f.wacc)*float64(year-5)/5
		default:
			wacc = params.TerminalWACC
		}

		row := ForecastRow{
			Year:          params.BaseYear + year,
			RevenueGrowth: growth,
			Revenue:       revenue,
			EBITMargin:    margin,
			EBIT:          ebit,
			TaxRate:       f.tax,
			AfterTaxEBIT:  afterTax,
			Reinvestment:  reinvestment,
			FCFF:          fcff,
			WACC:          wacc,
		}
		if year <= ForecastYears {
			df := 1 / math.Pow(1+wacc, float64(year))
			row.DiscountFactor = floatPtr(df)
			row.PV = floatPtr(fcff * df)
		}
		rows = append(rows, row)
	}

	return ForecastTable{Rows: rows, Warnings: warnings}
}

// reinvestmentFor stages net reinvestment by forecast year. Years 1-10 fund
// the revenue increment at the applicable revenue-to-invested-capital ratio;
// the terminal year uses the steady-state identity reinvestment =
// (g / RONIC) * NOPAT so the perpetuity can grow at the risk-free rate while
// earning RONIC on new capital. The second return names the guard that
// tripped, empty when none did.
func reinvestmentFor(year int, revenue, prevRevenue, afterTaxEBIT float64, params ValuationParams) (float64, string) {
	if year > ForecastYears {
		if params.RONIC == 0 {
			return 0, "RONIC is zero, terminal reinvestment set to 0"
		}
		return (params.RiskFreeRate / params.RONIC) * afterTaxEBIT, ""
	}

	// A company that shrinks in year 1 is assumed to need no net new
	// capital that year.
	if year == 1 && revenue <= prevRevenue {
		return 0, ""
	}

	var ratio float64
	switch {
	case year <= 2:
		ratio = params.RevenueToIC1
	case year <= 5:
		ratio = params.RevenueToIC2
	default:
		ratio = params.RevenueToIC3
	}
	if ratio == 0 {
		return 0, "revenue-to-invested-capital ratio is zero, reinvestment set to 0"
	}
	return (revenue - prevRevenue) / ratio, ""
}

// TerminalRow returns the terminal-year row of a complete table.
func (t ForecastTable) TerminalRow() (ForecastRow, error) {
	if len(t.Rows) <= terminalRow {
		return ForecastRow{}, fmt.Errorf("forecast table has %d rows, expected %d", len(t.Rows), terminalRow+1)
	}
	return t.Rows[terminalRow], nil
}
