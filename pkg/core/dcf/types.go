// Package dcf implements a multi-stage discounted-cash-flow valuation engine:
// a year-by-year forecast model, terminal value aggregation, a WACC calculator
// and grid-based sensitivity analysis. The engine is pure arithmetic over its
// inputs; data fetching, parameter suggestion and presentation live elsewhere.
package dcf

// BaseYearData is one historical period's financials, already scaled to
// millions of the reported currency. The invested-capital identity
// (IC = debt + equity - cash - investments) is the data layer's job; the
// engine consumes the figure as given.
type BaseYearData struct {
	Year              int     `json:"year"`
	Revenue           float64 `json:"revenue"`
	EBIT              float64 `json:"ebit"`
	AverageTaxRate    float64 `json:"average_tax_rate"` // fraction, historical average
	InvestedCapital   float64 `json:"invested_capital"`
	Cash              float64 `json:"cash"`
	TotalInvestments  float64 `json:"total_investments"`
	TotalDebt         float64 `json:"total_debt"`
	MinorityInterest  float64 `json:"minority_interest"`
	OutstandingShares float64 `json:"outstanding_shares"` // raw share count, not millions
	ReportedCurrency  string  `json:"reported_currency"`
	RevenueGrowth     float64 `json:"revenue_growth"` // %, prior-period growth
	Reinvestment      float64 `json:"reinvestment"`   // millions, prior-period net reinvestment
	CostOfDebt        float64 `json:"cost_of_debt"`   // %, interest expense over average debt
}

// CompanyProfile carries the market-side inputs for the WACC calculator.
// MarketCap is in millions of the trading currency.
type CompanyProfile struct {
	CompanyName string  `json:"company_name"`
	MarketCap   float64 `json:"market_cap"`
	Beta        float64 `json:"beta"`
	Country     string  `json:"country"`
	Currency    string  `json:"currency"` // trading currency
	Exchange    string  `json:"exchange"`
}

// ValuationParams is the assumption set for one valuation run.
//
// Unit contract (shared with every collaborator, do not change):
// RevenueGrowth1, RevenueGrowth2, EBITMargin, TaxRate and WACC are
// whole-number percentages (15.0 means 15%) and are divided by 100 once,
// inside the engine. TerminalWACC, RONIC and RiskFreeRate are fractions.
// The revenue-to-invested-capital ratios are raw multipliers (2.1, not 210%).
type ValuationParams struct {
	BaseYear       int     `json:"base_year"`
	RevenueGrowth1 float64 `json:"revenue_growth_1"` // %, year 1
	RevenueGrowth2 float64 `json:"revenue_growth_2"` // %, years 2-5
	EBITMargin     float64 `json:"ebit_margin"`      // %, convergence target
	Convergence    float64 `json:"convergence"`      // years to reach target margin
	RevenueToIC1   float64 `json:"revenue_invested_capital_ratio_1"` // years 1-2
	RevenueToIC2   float64 `json:"revenue_invested_capital_ratio_2"` // years 3-5
	RevenueToIC3   float64 `json:"revenue_invested_capital_ratio_3"` // years 5-10
	TaxRate        float64 `json:"tax_rate"`       // %
	WACC           float64 `json:"wacc"`           // %
	TerminalWACC   float64 `json:"terminal_wacc"`  // fraction
	RONIC          float64 `json:"ronic"`          // fraction
	RiskFreeRate   float64 `json:"risk_free_rate"` // fraction
}

// fractions is the engine-internal view of ValuationParams with the
// percentage fields already divided by 100. This is the single conversion
// boundary; nothing past it touches whole-number percentages.
type fractions struct {
	growth1 float64
	growth2 float64
	margin  float64
	tax     float64
	wacc    float64
}

func (p ValuationParams) fractions() fractions {
	return fractions{
		growth1: p.RevenueGrowth1 / 100,
		growth2: p.RevenueGrowth2 / 100,
		margin:  p.EBITMargin / 100,
		tax:     p.TaxRate / 100,
		wacc:    p.WACC / 100,
	}
}

// ForecastRow is one projected year. All rates are fractions, all money is
// millions. DiscountFactor and PV are nil on the terminal row: the terminal
// year feeds the perpetuity formula, not the explicit PV sum.
type ForecastRow struct {
	Year           int      `json:"year"`
	RevenueGrowth  float64  `json:"revenue_growth"`
	Revenue        float64  `json:"revenue"`
	EBITMargin     float64  `json:"ebit_margin"`
	EBIT           float64  `json:"ebit"`
	TaxRate        float64  `json:"tax_rate"`
	AfterTaxEBIT   float64  `json:"after_tax_ebit"`
	Reinvestment   float64  `json:"reinvestment"`
	FCFF           float64  `json:"fcff"`
	WACC           float64  `json:"wacc"`
	DiscountFactor *float64 `json:"discount_factor"`
	PV             *float64 `json:"pv_fcff"`
}

// ForecastTable is the full projection: row 0 is the base year, rows 1-10
// the explicit forecast, row 11 the terminal year. Built once per run and
// not mutated afterwards.
type ForecastTable struct {
	Rows     []ForecastRow `json:"rows"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Terminal row index within a ForecastTable.
const (
	ForecastYears = 10
	terminalRow   = 11
)

// ValuationResult is the aggregate output of one valuation run. The
// pass-through fields let presentation layers build the full waterfall
// without going back to BaseYearData.
type ValuationResult struct {
	Table ForecastTable `json:"table"`

	PVForecast      float64 `json:"pv_forecast"` // PV of years 1-10 FCFF
	TerminalValue   float64 `json:"terminal_value"`
	PVTerminal      float64 `json:"pv_terminal"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	PricePerShare   float64 `json:"price_per_share"`
	PriceAvailable  bool    `json:"price_available"` // false when shares <= 0

	Cash              float64  `json:"cash"`
	TotalInvestments  float64  `json:"total_investments"`
	TotalDebt         float64  `json:"total_debt"`
	MinorityInterest  float64  `json:"minority_interest"`
	OutstandingShares float64  `json:"outstanding_shares"`
	ReportedCurrency  string   `json:"reported_currency"`
	Warnings          []string `json:"warnings,omitempty"`
}

// SensitivityGrid is the growth x margin price-per-share table. GrowthRates
// index the rows, Margins the columns, both in whole-number percent like the
// params they override. Cells where the price is unavailable hold NaN.
type SensitivityGrid struct {
	GrowthRates []float64   `json:"growth_rates"`
	Margins     []float64   `json:"margins"`
	Prices      [][]float64 `json:"prices"`
}

// WACCSensitivity is the 1-D price-per-share series over a symmetric WACC
// range. BaseIndex points at the cell computed with the unmodified WACC.
type WACCSensitivity struct {
	WACCs     []float64 `json:"waccs"` // %
	Prices    []float64 `json:"prices"`
	BaseIndex int       `json:"base_index"`
}

// WACCResult is the discount rate plus every intermediate the calculation
// touched, for display. Rates are fractions.
type WACCResult struct {
	WACC              float64  `json:"wacc"`
	EquityRiskPremium float64  `json:"equity_risk_premium"`
	RiskFreeRate      float64  `json:"risk_free_rate"`
	Beta              float64  `json:"beta"`
	CostOfDebt        float64  `json:"cost_of_debt"`
	CostOfEquity      float64  `json:"cost_of_equity"`
	MarginalTaxRate   float64  `json:"marginal_tax_rate"`
	DebtWeight        float64  `json:"debt_weight"`
	EquityWeight      float64  `json:"equity_weight"`
	MarketCap         float64  `json:"market_cap"` // millions, reporting currency
	Warnings          []string `json:"warnings,omitempty"`
}

func floatPtr(f float64) *float64 { return &f }
