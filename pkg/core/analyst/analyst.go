// Package analyst asks a language model for DCF assumption suggestions
// grounded in the company's historical figures. Every suggestion carries the
// model's reasoning so a human can review before the numbers drive a
// valuation; the engine itself never sees anything but the final
// ValuationParams.
package analyst

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dcf_valuation/pkg/core/dcf"
	"dcf_valuation/pkg/core/fmp"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/utils"
)

// ParamSuggestion is one suggested value with the model's justification.
type ParamSuggestion struct {
	Value     float64 `json:"value"`
	Reasoning string  `json:"reasoning"`
}

// FlagSuggestion is a suggested boolean decision with justification.
type FlagSuggestion struct {
	Value     bool   `json:"value"`
	Reasoning string `json:"reasoning"`
}

// Suggestions is the full reviewed parameter set the model returns. Field
// names mirror the ValuationParams JSON contract.
type Suggestions struct {
	RevenueGrowth1 ParamSuggestion `json:"revenue_growth_1"`
	RevenueGrowth2 ParamSuggestion `json:"revenue_growth_2"`
	EBITMargin     ParamSuggestion `json:"ebit_margin"`
	Convergence    ParamSuggestion `json:"convergence"`
	RevenueToIC1   ParamSuggestion `json:"revenue_invested_capital_ratio_1"`
	RevenueToIC2   ParamSuggestion `json:"revenue_invested_capital_ratio_2"`
	RevenueToIC3   ParamSuggestion `json:"revenue_invested_capital_ratio_3"`
	TaxRate        ParamSuggestion `json:"tax_rate"`
	WACC           ParamSuggestion `json:"wacc"`
	RONICMatchWACC FlagSuggestion  `json:"ronic_match_wacc"`
}

// Request bundles everything the prompt needs.
type Request struct {
	Ticker         string
	Profile        dcf.CompanyProfile
	Base           dcf.BaseYearData
	History        []fmp.YearSummary
	CalculatedWACC float64 // fraction, from the WACC calculator
	CalculatedTax  float64 // fraction, historical average
}

// Analyst drives one provider. Model optionally overrides the provider's
// default model name.
type Analyst struct {
	Provider llm.Provider
	Model    string
}

func New(provider llm.Provider) *Analyst {
	return &Analyst{Provider: provider}
}

// Suggest runs the analysis prompt and parses the structured suggestions.
// The model's full text comes back alongside so callers can show the
// narrative around the JSON block.
func (a *Analyst) Suggest(ctx context.Context, req Request) (*Suggestions, string, error) {
	prompt := buildPrompt(req)
	fmt.Printf("[ANALYST] Requesting parameter suggestions for %s\n", req.Ticker)

	options := map[string]interface{}{
		"google_search": true,
	}
	if a.Model != "" {
		options["model"] = a.Model
	}
	raw, err := a.Provider.GenerateResponse(ctx, prompt, systemPrompt, options)
	if err != nil {
		return nil, "", fmt.Errorf("analyst generation failed: %w", err)
	}

	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		return nil, raw, err
	}
	return suggestions, raw, nil
}

var jsonFence = regexp.MustCompile("(?s)```json\\s*\n?(.*?)\n?\\s*```")

// ParseSuggestions extracts the JSON block from model output. Strict JSON is
// tried first; the repair and Hjson fallbacks cover the usual model
// formatting slips.
func ParseSuggestions(text string) (*Suggestions, error) {
	candidate := text
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidate = text[start : end+1]
		}
	}

	var s Suggestions
	if _, err := utils.SmartParse(candidate, &s); err != nil {
		return nil, fmt.Errorf("ANALYST_PARSE_FAILED: could not extract suggestions: %w", err)
	}
	return &s, nil
}

// ToValuationParams converts reviewed suggestions into the engine's
// parameter record, deriving the terminal assumptions from the company's
// country and the RONIC decision.
func (s *Suggestions) ToValuationParams(country string, baseYear int) dcf.ValuationParams {
	return dcf.ValuationParams{
		BaseYear:       baseYear,
		RevenueGrowth1: s.RevenueGrowth1.Value,
		RevenueGrowth2: s.RevenueGrowth2.Value,
		EBITMargin:     s.EBITMargin.Value,
		Convergence:    s.Convergence.Value,
		RevenueToIC1:   s.RevenueToIC1.Value,
		RevenueToIC2:   s.RevenueToIC2.Value,
		RevenueToIC3:   s.RevenueToIC3.Value,
		TaxRate:        s.TaxRate.Value,
		WACC:           s.WACC.Value,
		TerminalWACC:   dcf.TerminalWACCFor(country),
		RONIC:          dcf.TerminalRONICFor(country, s.RONICMatchWACC.Value),
		RiskFreeRate:   dcf.RiskFreeRateFor(country),
	}
}
