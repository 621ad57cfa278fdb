package dcf

import (
	"math"
	"strings"
	"testing"
)

func TestTerminalSpreadMustBePositive(t *testing.T) {
	params := fixtureParams()
	params.TerminalWACC = params.RiskFreeRate // zero spread, perpetuity undefined

	if _, err := Valuate(fixtureBase(), params); err == nil {
		t.Fatal("expected a configuration error when terminal WACC equals the perpetuity growth rate")
	} else if !strings.Contains(err.Error(), "TERMINAL_SPREAD_INVALID") {
		t.Errorf("error should name the tripped guard, got: %v", err)
	}

	params.TerminalWACC = params.RiskFreeRate - 0.01
	if _, err := Valuate(fixtureBase(), params); err == nil {
		t.Fatal("expected a configuration error when terminal WACC is below the perpetuity growth rate")
	}
}

func TestValuationComposition(t *testing.T) {
	base := fixtureBase()
	params := fixtureParams()
	res, err := Valuate(base, params)
	if err != nil {
		t.Fatal(err)
	}

	terminal := res.Table.Rows[11]
	tv := terminal.FCFF / (params.TerminalWACC - params.RiskFreeRate)
	approx(t, "terminal value", res.TerminalValue, tv, 1e-6)
	// Discounted a flat 10 periods at the terminal rate by convention.
	approx(t, "PV of terminal value", res.PVTerminal, tv/math.Pow(1.08, 10), 1e-6)

	var pv10 float64
	for y := 1; y <= 10; y++ {
		pv10 += *res.Table.Rows[y].PV
	}
	approx(t, "PV of forecast FCFF", res.PVForecast, pv10, 1e-6)

	ev := pv10 + res.PVTerminal + base.Cash + base.TotalInvestments
	approx(t, "enterprise value", res.EnterpriseValue, ev, 1e-6)

	eq := ev - base.TotalDebt - base.MinorityInterest
	approx(t, "equity value", res.EquityValue, eq, 1e-6)
	approx(t, "price per share", res.PricePerShare, eq*1e6/base.OutstandingShares, 1e-6)
}

// Regression fixture: a Tencent-scale base year should land around a couple
// of thousand currency units per share with an enterprise value in the low
// single-digit trillions (millions unit). Order-of-magnitude bounds only;
// rounding-guard choices move the last digits.
func TestRegressionFixtureMagnitude(t *testing.T) {
	res, err := Valuate(fixtureBase(), fixtureParams())
	if err != nil {
		t.Fatal(err)
	}

	if !res.PriceAvailable {
		t.Fatal("price should be available with a positive share count")
	}
	if math.IsNaN(res.PricePerShare) || math.IsInf(res.PricePerShare, 0) || res.PricePerShare < 0 {
		t.Fatalf("price per share must be finite and non-negative, got %f", res.PricePerShare)
	}
	if res.PricePerShare < 1000 || res.PricePerShare > 4000 {
		t.Errorf("price per share out of expected band: got %.2f, want ~2,400", res.PricePerShare)
	}
	if res.EnterpriseValue < 1e6 || res.EnterpriseValue > 6e6 {
		t.Errorf("enterprise value out of expected band: got %.0f million", res.EnterpriseValue)
	}
}

func TestZeroSharesYieldsSentinelNotNaN(t *testing.T) {
	base := fixtureBase()
	base.OutstandingShares = 0
	res, err := Valuate(base, fixtureParams())
	if err != nil {
		t.Fatalf("zero shares is degenerate input, not a fatal error: %v", err)
	}
	if res.PriceAvailable {
		t.Error("price must be flagged unavailable when shares are zero")
	}
	if res.PricePerShare != 0 {
		t.Errorf("unavailable price should read 0, got %f", res.PricePerShare)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "shares") {
			found = true
		}
	}
	if !found {
		t.Error("the tripped guard must be observable in the warnings")
	}
}

func TestHigherWACCStrictlyLowersPrice(t *testing.T) {
	base := fixtureBase()
	params := fixtureParams()

	prev := math.Inf(1)
	for _, w := range []float64{6, 7, 8, 9, 10, 12} {
		p := params
		p.WACC = w
		res, err := Valuate(base, p)
		if err != nil {
			t.Fatal(err)
		}
		if res.PricePerShare >= prev {
			t.Errorf("price must strictly decrease as WACC rises: wacc=%.1f%% price=%.2f prev=%.2f", w, res.PricePerShare, prev)
		}
		prev = res.PricePerShare
	}
}

func TestHigherGrowthDoesNotLowerPrice(t *testing.T) {
	base := fixtureBase()
	params := fixtureParams()

	prev := -math.Inf(1)
	for _, g := range []float64{8, 10, 12, 14.3, 16, 19} {
		p := params
		p.RevenueGrowth2 = g
		res, err := Valuate(base, p)
		if err != nil {
			t.Fatal(err)
		}
		if res.PricePerShare < prev {
			t.Errorf("price must not decrease as growth rises: growth=%.1f%% price=%.2f prev=%.2f", g, res.PricePerShare, prev)
		}
		prev = res.PricePerShare
	}
}
