package dcf

import (
	"fmt"
	"math"
)

// shareScale converts the model's internal unit (millions) back into the
// raw currency unit the share count is denominated in.
const shareScale = 1_000_000

// Valuate runs the forecast engine and rolls the projection up to enterprise
// value, equity value and price per share. The only fatal condition is a
// terminal WACC at or below the perpetuity growth rate, which makes the
// terminal value undefined; degenerate inputs such as a zero share count
// produce warnings on the result instead.
func Valuate(base BaseYearData, params ValuationParams) (*ValuationResult, error) {
	if err := CheckTerminalSpread(params); err != nil {
		return nil, err
	}
	table := BuildForecast(base, params)
	return aggregate(table, base, params), nil
}

// CheckTerminalSpread validates the one configuration that no run can
// survive: the Gordon growth denominator must be positive.
func CheckTerminalSpread(params ValuationParams) error {
	if params.TerminalWACC-params.RiskFreeRate <= 0 {
		return fmt.Errorf("TERMINAL_SPREAD_INVALID: terminal WACC %.4f must exceed the perpetuity growth rate %.4f",
			params.TerminalWACC, params.RiskFreeRate)
	}
	return nil
}

func aggregate(table ForecastTable, base BaseYearData, params ValuationParams) *ValuationResult {
	terminal := table.Rows[terminalRow]

	terminalValue := terminal.FCFF / (params.TerminalWACC - params.RiskFreeRate)

	// The terminal value is discounted a flat 10 periods at the terminal
	// rate even though years 6-10 use a fading schedule. Intentional
	// modeling simplification, not a bug to fix.
	pvTerminal := terminalValue / math.Pow(1+params.TerminalWACC, ForecastYears)

	var pvForecast float64
	for _, row := range table.Rows[1 : ForecastYears+1] {
		if row.PV != nil {
			pvForecast += *row.PV
		}
	}

	enterpriseValue := pvForecast + pvTerminal + base.Cash + base.TotalInvestments
	equityValue := enterpriseValue - base.TotalDebt - base.MinorityInterest

	result := &ValuationResult{
		Table:             table,
		PVForecast:        pvForecast,
		TerminalValue:     terminalValue,
		PVTerminal:        pvTerminal,
		EnterpriseValue:   enterpriseValue,
		EquityValue:       equityValue,
		Cash:              base.Cash,
		TotalInvestments:  base.TotalInvestments,
		TotalDebt:         base.TotalDebt,
		MinorityInterest:  base.MinorityInterest,
		OutstandingShares: base.OutstandingShares,
		ReportedCurrency:  base.ReportedCurrency,
		Warnings:          append([]string(nil), table.Warnings...),
	}

	if base.OutstandingShares > 0 {
		result.PricePerShare = equityValue * shareScale / base.OutstandingShares
		result.PriceAvailable = true
	} else {
		result.Warnings = append(result.Warnings, "outstanding shares is zero or unknown, price per share unavailable")
	}

	return result
}
