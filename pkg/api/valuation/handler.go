package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dcf_valuation/pkg/core/dcf"
	"dcf_valuation/pkg/core/fmp"
	"dcf_valuation/pkg/core/store"
)

var fmpClient *fmp.Client
var runRepo *store.ValuationRepo

// InitHandler wires the data client and optional persistence. Pass a nil
// repo to disable saving runs.
func InitHandler(client *fmp.Client, repo *store.ValuationRepo) {
	fmpClient = client
	runRepo = repo
}

type RunRequest struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`

	// Inline inputs. When base and params are present no data fetch
	// happens, which also makes the endpoint usable without an FMP key.
	Base    *dcf.BaseYearData    `json:"base,omitempty"`
	Profile *dcf.CompanyProfile  `json:"profile,omitempty"`
	Params  *dcf.ValuationParams `json:"params,omitempty"`
}

type RunResponse struct {
	Ticker      string               `json:"ticker"`
	CompanyName string               `json:"company_name"`
	Params      dcf.ValuationParams  `json:"params"`
	WACC        *dcf.WACCResult      `json:"wacc,omitempty"`
	Result      *dcf.ValuationResult `json:"result"`
	Grid        *dcf.SensitivityGrid `json:"sensitivity"`
	Series      *dcf.WACCSensitivity `json:"wacc_sensitivity"`
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleRun runs a full valuation: forecast, aggregation and both
// sensitivity sweeps. Inputs come inline or are fetched by ticker.
func HandleRun(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	base, profile, params, err := resolveInputs(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var waccRes *dcf.WACCResult
	if profile != nil && params.WACC == 0 {
		res := dcf.CalculateWACC(*base, *profile, nil, nil)
		waccRes = &res
		params.WACC = res.WACC * 100
	}

	result, err := dcf.Valuate(*base, *params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	grid, err := dcf.GrowthMarginGrid(*base, *params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	series, err := dcf.WACCSeries(*base, *params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	companyName := ""
	if profile != nil {
		companyName = profile.CompanyName
	}
	resp := RunResponse{
		Ticker:      strings.ToUpper(req.Ticker),
		CompanyName: companyName,
		Params:      *params,
		WACC:        waccRes,
		Result:      result,
		Grid:        grid,
		Series:      series,
	}

	saveRun(r.Context(), &resp)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf("[VALUATION] Failed to encode response for %s: %v\n", resp.Ticker, err)
	}
}

type WACCRequest struct {
	Base               dcf.BaseYearData   `json:"base"`
	Profile            dcf.CompanyProfile `json:"profile"`
	EquityRiskPremiums map[string]float64 `json:"equity_risk_premiums,omitempty"`
	ForexRates         map[string]float64 `json:"forex_rates,omitempty"`
}

// HandleWACC exposes the discount-rate calculation on its own, with every
// intermediate in the response.
func HandleWACC(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req WACCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := dcf.CalculateWACC(req.Base, req.Profile, req.EquityRiskPremiums, req.ForexRates)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		fmt.Printf("[VALUATION] Failed to encode WACC response: %v\n", err)
	}
}

// resolveInputs fills in whatever the request left out. A fully inline
// request passes through untouched; a ticker-only request goes to FMP.
func resolveInputs(ctx context.Context, req *RunRequest) (*dcf.BaseYearData, *dcf.CompanyProfile, *dcf.ValuationParams, error) {
	if req.Base != nil && req.Params != nil {
		return req.Base, req.Profile, req.Params, nil
	}
	if req.Ticker == "" {
		return nil, nil, nil, fmt.Errorf("REQUEST_INCOMPLETE: provide base+params inline or a ticker to fetch")
	}
	if fmpClient == nil {
		return nil, nil, nil, fmt.Errorf("FMP_NOT_CONFIGURED: no data client, inline inputs required")
	}

	ticker := strings.ToUpper(req.Ticker)
	period := req.Period
	if period == "" {
		period = "annual"
	}
	fmt.Printf("[VALUATION] Fetching %s (%s) from FMP\n", ticker, period)

	history, err := fmpClient.FetchHistory(ctx, ticker, period, 10)
	if err != nil {
		return nil, nil, nil, err
	}
	profileRaw, err := fmpClient.FetchProfile(ctx, ticker)
	if err != nil {
		return nil, nil, nil, err
	}
	shares, err := fmpClient.FetchSharesFloat(ctx, ticker)
	if err != nil {
		fmt.Printf("[VALUATION] Shares float unavailable for %s: %v\n", ticker, err)
	}

	base, _, err := fmp.BuildBaseYear(history, profileRaw, shares, period)
	if err != nil {
		return nil, nil, nil, err
	}
	profile := profileRaw.ToCompanyProfile()

	params := req.Params
	if params == nil {
		country := profile.Country
		params = &dcf.ValuationParams{
			BaseYear:       base.Year,
			RevenueGrowth1: base.RevenueGrowth,
			RevenueGrowth2: base.RevenueGrowth,
			EBITMargin:     safeMargin(base),
			Convergence:    5,
			RevenueToIC1:   safeRatio(base),
			RevenueToIC2:   safeRatio(base),
			RevenueToIC3:   safeRatio(base),
			TaxRate:        base.AverageTaxRate * 100,
			TerminalWACC:   dcf.TerminalWACCFor(country),
			RONIC:          dcf.TerminalRONICFor(country, true),
			RiskFreeRate:   dcf.RiskFreeRateFor(country),
		}
	}
	return &base, &profile, params, nil
}

func safeMargin(base dcf.BaseYearData) float64 {
	if base.Revenue == 0 {
		return 0
	}
	return base.EBIT / base.Revenue * 100
}

func safeRatio(base dcf.BaseYearData) float64 {
	if base.InvestedCapital == 0 {
		return 0
	}
	return base.Revenue / base.InvestedCapital
}

// saveRun persists best-effort; a dead database never fails the request.
func saveRun(ctx context.Context, resp *RunResponse) {
	if runRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	run := &store.ValuationRun{
		Ticker:      resp.Ticker,
		CompanyName: resp.CompanyName,
		Currency:    resp.Result.ReportedCurrency,
		Params:      resp.Params,
		Result:      resp.Result,
		Sensitivity: resp.Grid,
		WACCSeries:  resp.Series,
	}
	if err := runRepo.Save(ctx, run); err != nil {
		fmt.Printf("[VALUATION] Failed to save run: %v\n", err)
	}
}
