package dcf

import "fmt"

// CountryKey normalizes the ISO codes the profile providers emit to the
// country names the equity-risk-premium table is keyed by.
func CountryKey(country string) string {
	switch country {
	case "CN":
		return "China"
	case "US":
		return "United States"
	default:
		return country
	}
}

// defaultEquityRiskPremium is used when the lookup table has no entry for
// the company's country. Fraction.
const defaultEquityRiskPremium = 0.05

// CalculateWACC derives the discount rate from the company's capital
// structure and market risk inputs.
//
//	WACC = Kd*(1-t)*Wd + Ke*We,  Ke = Rf + ERP*beta
//
// equityRiskPremiums is keyed by country name with values in whole-number
// percent (the provider convention); forexRates is keyed "FROM/TO" and is
// consulted only when the trading currency differs from the reporting
// currency. Zero or missing debt and market cap are degenerate inputs, not
// errors: the affected weight is forced to zero and a warning is recorded.
func CalculateWACC(base BaseYearData, profile CompanyProfile, equityRiskPremiums map[string]float64, forexRates map[string]float64) WACCResult {
	country := CountryKey(profile.Country)

	erp, ok := equityRiskPremiums[country]
	if !ok {
		erp = defaultEquityRiskPremium * 100
	}
	erp /= 100

	marketCap := profile.MarketCap
	if profile.Currency != "" && base.ReportedCurrency != "" && profile.Currency != base.ReportedCurrency {
		pair := fmt.Sprintf("%s/%s", profile.Currency, base.ReportedCurrency)
		rate, ok := forexRates[pair]
		if !ok {
			rate = 1.0
		}
		marketCap *= rate
	}

	result := WACCResult{
		EquityRiskPremium: erp,
		RiskFreeRate:      RiskFreeRateFor(profile.Country),
		Beta:              profile.Beta,
		CostOfDebt:        base.CostOfDebt / 100,
		MarginalTaxRate:   MarginalTaxRate,
		MarketCap:         marketCap,
	}

	totalDebt := base.TotalDebt
	capital := totalDebt + marketCap

	if totalDebt <= 0 {
		result.Warnings = append(result.Warnings, "total debt is zero or unknown, debt weight forced to 0")
	} else if capital != 0 {
		result.DebtWeight = totalDebt / capital
	}

	if marketCap <= 0 {
		result.Warnings = append(result.Warnings, "market cap is zero or unknown, equity weight forced to 0")
	} else if capital != 0 {
		result.EquityWeight = marketCap / capital
	}

	result.CostOfEquity = result.RiskFreeRate + erp*profile.Beta
	result.WACC = result.CostOfDebt*(1-MarginalTaxRate)*result.DebtWeight +
		result.CostOfEquity*result.EquityWeight

	return result
}
