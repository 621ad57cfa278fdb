package valuation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"dcf_valuation/pkg/core/fmp"
)

// stubProvider returns a canned analyst response.
type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	return s.response, s.err
}

const stubAnalysis = "## Assumptions\n\nSteady premium-liquor demand supports growth.\n\n```json\n{\n" +
	`  "revenue_growth_1": {"value": 15.0, "reasoning": "guidance"},` + "\n" +
	`  "revenue_growth_2": {"value": 14.3, "reasoning": "5y trend"},` + "\n" +
	`  "ebit_margin": {"value": 69.5, "reasoning": "stable"},` + "\n" +
	`  "convergence": {"value": 5, "reasoning": "already there"},` + "\n" +
	`  "revenue_invested_capital_ratio_1": {"value": 2.1, "reasoning": "history"},` + "\n" +
	`  "revenue_invested_capital_ratio_2": {"value": 3.03, "reasoning": "scale"},` + "\n" +
	`  "revenue_invested_capital_ratio_3": {"value": 3.03, "reasoning": "scale"},` + "\n" +
	`  "tax_rate": {"value": 25.0, "reasoning": "statutory"},` + "\n" +
	`  "wacc": {"value": 8.0, "reasoning": "calculated"},` + "\n" +
	`  "ronic_match_wacc": {"value": true, "reasoning": "moat"}` + "\n}\n```\n"

func TestHandleAnalyzeInline(t *testing.T) {
	InitHandler(nil, nil)
	InitAnalyst(&stubProvider{response: stubAnalysis}, "")
	defer InitAnalyst(nil, "")

	inline := inlineRunRequest()
	req := AnalyzeRequest{
		Ticker:  "600519.SS",
		Base:    inline.Base,
		Profile: inline.Profile,
		History: []fmp.YearSummary{{Year: 2024, Revenue: 178576}},
	}
	rec := postJSON(t, HandleAnalyze, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Suggestions == nil {
		t.Fatal("no suggestions")
	}
	if got := resp.Params.RevenueGrowth1; got != 15.0 {
		t.Errorf("RevenueGrowth1 = %v, want 15", got)
	}
	// ronic_match_wacc=true for CN means RONIC equals the terminal WACC.
	if resp.Params.RONIC != resp.Params.TerminalWACC {
		t.Errorf("RONIC = %v, TerminalWACC = %v, want equal", resp.Params.RONIC, resp.Params.TerminalWACC)
	}
	if !strings.Contains(resp.AnalysisHTML, "<h2") {
		t.Errorf("analysis not rendered as HTML: %q", resp.AnalysisHTML)
	}
}

func TestHandleAnalyzeWithoutProvider(t *testing.T) {
	InitHandler(nil, nil)
	InitAnalyst(nil, "")

	rec := postJSON(t, HandleAnalyze, AnalyzeRequest{Ticker: "AAPL"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleAnalyzeProviderFailure(t *testing.T) {
	InitHandler(nil, nil)
	InitAnalyst(&stubProvider{response: "no json here at all"}, "")
	defer InitAnalyst(nil, "")

	inline := inlineRunRequest()
	req := AnalyzeRequest{Ticker: "600519.SS", Base: inline.Base, Profile: inline.Profile}
	rec := postJSON(t, HandleAnalyze, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body = %s", rec.Code, rec.Body.String())
	}
}
