package fmp

// Raw Financial Modeling Prep records. Field names follow the provider's
// JSON; monetary values arrive in absolute currency units and are scaled to
// millions by the base-year builder.

type IncomeStatement struct {
	CalendarYear     string  `json:"calendarYear"`
	Date             string  `json:"date"`
	Period           string  `json:"period"`
	ReportedCurrency string  `json:"reportedCurrency"`
	Revenue          float64 `json:"revenue"`
	OperatingIncome  float64 `json:"operatingIncome"`
	InterestExpense  float64 `json:"interestExpense"`
	InterestIncome   float64 `json:"interestIncome"`
	IncomeBeforeTax  float64 `json:"incomeBeforeTax"`
	IncomeTaxExpense float64 `json:"incomeTaxExpense"`

	WeightedAverageShsOutDil float64 `json:"weightedAverageShsOutDil"`
}

type BalanceSheet struct {
	CalendarYear           string  `json:"calendarYear"`
	TotalDebt              float64 `json:"totalDebt"`
	TotalEquity            float64 `json:"totalEquity"`
	CashAndCashEquivalents float64 `json:"cashAndCashEquivalents"`
	TotalInvestments       float64 `json:"totalInvestments"`
	MinorityInterest       float64 `json:"minorityInterest"`
}

type CashFlowStatement struct {
	CalendarYear                           string  `json:"calendarYear"`
	InvestmentsInPropertyPlantAndEquipment float64 `json:"investmentsInPropertyPlantAndEquipment"`
	ChangeInWorkingCapital                 float64 `json:"changeInWorkingCapital"`
	DepreciationAndAmortization            float64 `json:"depreciationAndAmortization"`
}

type Profile struct {
	CompanyName string  `json:"companyName"`
	MktCap      float64 `json:"mktCap"`
	Beta        float64 `json:"beta"`
	Country     string  `json:"country"`
	Currency    string  `json:"currency"`
	Exchange    string  `json:"exchange"`
}

type SharesFloat struct {
	Symbol            string  `json:"symbol"`
	OutstandingShares float64 `json:"outstandingShares"`
}

// KeyMetrics carries the provider's precomputed return and payout ratios,
// shown alongside the statement history. Rates arrive as fractions.
type KeyMetrics struct {
	CalendarYear  string  `json:"calendarYear"`
	ROIC          float64 `json:"roic"`
	ROE           float64 `json:"roe"`
	DividendYield float64 `json:"dividendYield"`
	PayoutRatio   float64 `json:"payoutRatio"`
}

type marketRiskPremium struct {
	Country                string  `json:"country"`
	TotalEquityRiskPremium float64 `json:"totalEquityRiskPremium"`
}

type forexQuote struct {
	Name  string  `json:"name"` // "USD/CNY"
	Price float64 `json:"price"`
}

// History bundles the statements one fetch returns, latest period first
// (the provider's ordering).
type History struct {
	Income   []IncomeStatement
	Balance  []BalanceSheet
	CashFlow []CashFlowStatement
}
