package valuation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dcf_valuation/pkg/core/analyst"
	"dcf_valuation/pkg/core/dcf"
	"dcf_valuation/pkg/core/fmp"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/utils"
)

var analystProvider llm.Provider
var analystModel string

// InitAnalyst wires the model backend for the analyze endpoint. Without it
// the endpoint answers 503.
func InitAnalyst(provider llm.Provider, model string) {
	analystProvider = provider
	analystModel = model
}

type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
	Period string `json:"period"`

	// Inline inputs, same contract as RunRequest.
	Base    *dcf.BaseYearData   `json:"base,omitempty"`
	Profile *dcf.CompanyProfile `json:"profile,omitempty"`
	History []fmp.YearSummary   `json:"history,omitempty"`
}

type AnalyzeResponse struct {
	Ticker       string               `json:"ticker"`
	Suggestions  *analyst.Suggestions `json:"suggestions"`
	Params       dcf.ValuationParams  `json:"params"`
	AnalysisHTML string               `json:"analysis_html"`
}

// HandleAnalyze asks the configured model for assumption suggestions and
// returns them with the reasoning rendered as HTML.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if analystProvider == nil {
		http.Error(w, "LLM_NOT_CONFIGURED: no model backend", http.StatusServiceUnavailable)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	base := req.Base
	profile := req.Profile
	history := req.History
	if base == nil || profile == nil {
		runReq := RunRequest{Ticker: req.Ticker, Period: req.Period}
		b, p, _, err := resolveInputs(r.Context(), &runReq)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		base, profile = b, p
	}

	waccRes := dcf.CalculateWACC(*base, *profile, nil, nil)

	a := analyst.New(analystProvider)
	a.Model = analystModel
	suggestions, raw, err := a.Suggest(r.Context(), analyst.Request{
		Ticker:         strings.ToUpper(req.Ticker),
		Profile:        *profile,
		Base:           *base,
		History:        history,
		CalculatedWACC: waccRes.WACC,
		CalculatedTax:  base.AverageTaxRate,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	html, err := utils.MarkdownToHTML(raw)
	if err != nil {
		fmt.Printf("[ANALYST] Markdown rendering failed: %v\n", err)
		html = ""
	}

	resp := AnalyzeResponse{
		Ticker:       strings.ToUpper(req.Ticker),
		Suggestions:  suggestions,
		Params:       suggestions.ToValuationParams(profile.Country, base.Year),
		AnalysisHTML: html,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf("[ANALYST] Failed to encode response for %s: %v\n", resp.Ticker, err)
	}
}
