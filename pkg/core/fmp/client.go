// Package fmp fetches financial statements and market data from the
// Financial Modeling Prep JSON API and condenses them into the base-year
// record the valuation engine consumes. It is the engine's only data
// collaborator; nothing in here leaks past BaseYearData/CompanyProfile.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://financialmodelingprep.com/api"

// Client is a thin FMP API client. Zero value is not usable; construct with
// NewClient.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.APIKey)

	endpoint := fmt.Sprintf("%s%s?%s", c.BaseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("FMP request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read FMP response for %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FMP_HTTP_ERROR: %s returned %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}

	// The API reports errors as a JSON object even on 200s.
	var apiErr struct {
		ErrorMessage string `json:"Error Message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.ErrorMessage != "" {
		return fmt.Errorf("FMP_API_ERROR: %s: %s", path, apiErr.ErrorMessage)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode FMP response for %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func statementQuery(period string) url.Values {
	q := url.Values{}
	if period == "quarter" {
		q.Set("period", "quarter")
	}
	return q
}

// FetchHistory pulls the three statements for a ticker, limited to the given
// number of periods, latest first.
func (c *Client) FetchHistory(ctx context.Context, ticker, period string, periods int) (*History, error) {
	fmt.Printf("[FMP] Fetching %d %s periods for %s\n", periods, period, ticker)

	var income []IncomeStatement
	if err := c.get(ctx, "/v3/income-statement/"+ticker, statementQuery(period), &income); err != nil {
		return nil, err
	}
	var balance []BalanceSheet
	if err := c.get(ctx, "/v3/balance-sheet-statement/"+ticker, statementQuery(period), &balance); err != nil {
		return nil, err
	}
	var cashflow []CashFlowStatement
	if err := c.get(ctx, "/v3/cash-flow-statement/"+ticker, statementQuery(period), &cashflow); err != nil {
		return nil, err
	}

	if len(income) == 0 || len(balance) == 0 || len(cashflow) == 0 {
		return nil, fmt.Errorf("FMP_NO_DATA: no statements returned for %s", ticker)
	}

	h := &History{Income: income, Balance: balance, CashFlow: cashflow}
	h.limit(periods)
	return h, nil
}

func (h *History) limit(n int) {
	if len(h.Income) > n {
		h.Income = h.Income[:n]
	}
	if len(h.Balance) > n {
		h.Balance = h.Balance[:n]
	}
	if len(h.CashFlow) > n {
		h.CashFlow = h.CashFlow[:n]
	}
}

// FetchProfile returns the company profile (market cap, beta, country).
func (c *Client) FetchProfile(ctx context.Context, ticker string) (*Profile, error) {
	var profiles []Profile
	if err := c.get(ctx, "/v3/profile/"+ticker, nil, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("FMP_NO_DATA: no company profile found for %s", ticker)
	}
	return &profiles[0], nil
}

// FetchSharesFloat returns the outstanding share count record.
func (c *Client) FetchSharesFloat(ctx context.Context, ticker string) (*SharesFloat, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	var records []SharesFloat
	if err := c.get(ctx, "/v4/shares_float", q, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("FMP_NO_DATA: no shares float record for %s", ticker)
	}
	return &records[0], nil
}

// FetchKeyMetrics returns the provider's precomputed ratios, latest first.
func (c *Client) FetchKeyMetrics(ctx context.Context, ticker, period string, periods int) ([]KeyMetrics, error) {
	var metrics []KeyMetrics
	if err := c.get(ctx, "/v3/key-metrics/"+ticker, statementQuery(period), &metrics); err != nil {
		return nil, err
	}
	if len(metrics) > periods {
		metrics = metrics[:periods]
	}
	return metrics, nil
}

// FetchMarketRiskPremiums returns total equity risk premium by country name,
// in whole-number percent.
func (c *Client) FetchMarketRiskPremiums(ctx context.Context) (map[string]float64, error) {
	var records []marketRiskPremium
	if err := c.get(ctx, "/v4/market_risk_premium", nil, &records); err != nil {
		return nil, err
	}
	premiums := make(map[string]float64, len(records))
	for _, r := range records {
		premiums[r.Country] = r.TotalEquityRiskPremium
	}
	return premiums, nil
}

// FetchForexRates returns spot rates keyed "FROM/TO".
func (c *Client) FetchForexRates(ctx context.Context) (map[string]float64, error) {
	var quotes []forexQuote
	if err := c.get(ctx, "/v3/quotes/forex", nil, &quotes); err != nil {
		return nil, err
	}
	rates := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		rates[q.Name] = q.Price
	}
	return rates, nil
}
