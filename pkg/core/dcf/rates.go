package dcf

// Fixed model-wide rate conventions. These are deliberately constants, not
// live market data: the terminal assumptions of a 10-year model should be
// stable across runs, and callers that disagree can override the derived
// fields on ValuationParams directly.
const (
	// MarginalTaxRate is the statutory rate applied to the debt tax shield
	// in the WACC calculation (the forecast itself uses the effective rate
	// supplied in ValuationParams).
	MarginalTaxRate = 0.25

	// TerminalRiskPremium is added to the risk-free rate to form the
	// terminal WACC for mature companies.
	TerminalRiskPremium = 0.05

	// TerminalRONICPremium is the extra spread granted to companies whose
	// return on new capital is expected to stay above the cost of capital
	// beyond the forecast horizon.
	TerminalRONICPremium = 0.05

	RiskFreeRateUS            = 0.04
	RiskFreeRateChina         = 0.03
	RiskFreeRateInternational = 0.03
)

// RiskFreeRateFor returns the per-country risk-free rate used as the
// perpetuity growth rate and the CAPM base rate. Country accepts both ISO
// codes and full names as the profile providers emit either.
func RiskFreeRateFor(country string) float64 {
	switch country {
	case "United States", "US":
		return RiskFreeRateUS
	case "China", "CN":
		return RiskFreeRateChina
	default:
		return RiskFreeRateInternational
	}
}

// TerminalWACCFor returns the terminal discount rate: risk-free rate plus
// the fixed terminal risk premium.
func TerminalWACCFor(country string) float64 {
	return RiskFreeRateFor(country) + TerminalRiskPremium
}

// TerminalRONICFor returns the steady-state return on new invested capital.
// When matchWACC is true RONIC reverts to the terminal WACC (competition has
// eroded excess returns); otherwise a durable-moat premium is added.
func TerminalRONICFor(country string, matchWACC bool) float64 {
	ronic := RiskFreeRateFor(country) + TerminalRiskPremium
	if !matchWACC {
		ronic += TerminalRONICPremium
	}
	return ronic
}
