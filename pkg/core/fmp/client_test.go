package fmp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key")
	client.BaseURL = server.URL
	return client, server
}

func TestFetchProfile(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v3/profile/AAPL") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("api key not forwarded")
		}
		w.Write([]byte(`[{"companyName":"Apple Inc.","mktCap":3000000000000,"beta":1.25,"country":"US","currency":"USD","exchange":"NASDAQ"}]`))
	})
	defer server.Close()

	profile, err := client.FetchProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if profile.CompanyName != "Apple Inc." || profile.Beta != 1.25 {
		t.Errorf("profile decoded wrong: %+v", profile)
	}
}

func TestFetchHistoryLimitsPeriods(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "income-statement"):
			w.Write([]byte(`[{"calendarYear":"2023","revenue":100},{"calendarYear":"2022","revenue":90},{"calendarYear":"2021","revenue":80}]`))
		case strings.Contains(r.URL.Path, "balance-sheet-statement"):
			w.Write([]byte(`[{"calendarYear":"2023"},{"calendarYear":"2022"},{"calendarYear":"2021"}]`))
		case strings.Contains(r.URL.Path, "cash-flow-statement"):
			w.Write([]byte(`[{"calendarYear":"2023"},{"calendarYear":"2022"},{"calendarYear":"2021"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	defer server.Close()

	h, err := client.FetchHistory(context.Background(), "TEST", "annual", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Income) != 2 || len(h.Balance) != 2 || len(h.CashFlow) != 2 {
		t.Errorf("history not limited to 2 periods: %d/%d/%d", len(h.Income), len(h.Balance), len(h.CashFlow))
	}
}

func TestQuarterPeriodForwarded(t *testing.T) {
	sawPeriod := false
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("period") == "quarter" {
			sawPeriod = true
		}
		w.Write([]byte(`[{"calendarYear":"2023"}]`))
	})
	defer server.Close()

	if _, err := client.FetchHistory(context.Background(), "TEST", "quarter", 8); err != nil {
		t.Fatal(err)
	}
	if !sawPeriod {
		t.Error("quarter period not forwarded to the API")
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message":"Invalid API KEY"}`))
	})
	defer server.Close()

	_, err := client.FetchProfile(context.Background(), "AAPL")
	if err == nil || !strings.Contains(err.Error(), "FMP_API_ERROR") {
		t.Errorf("expected FMP_API_ERROR, got %v", err)
	}
}

func TestFetchKeyMetricsLimited(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v3/key-metrics/TEST") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"calendarYear":"2023","roic":0.31},{"calendarYear":"2022","roic":0.29},{"calendarYear":"2021","roic":0.27}]`))
	})
	defer server.Close()

	metrics, err := client.FetchKeyMetrics(context.Background(), "TEST", "annual", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(metrics) != 2 || metrics[0].ROIC != 0.31 {
		t.Errorf("key metrics decoded wrong: %+v", metrics)
	}
}

func TestMarketRiskPremiumsKeyedByCountry(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"country":"United States","totalEquityRiskPremium":4.6},{"country":"China","totalEquityRiskPremium":5.2}]`))
	})
	defer server.Close()

	premiums, err := client.FetchMarketRiskPremiums(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if premiums["China"] != 5.2 {
		t.Errorf("premium lookup broken: %+v", premiums)
	}
}

func TestForexRatesKeyedByPair(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"USD/CNY","price":7.24},{"name":"EUR/USD","price":1.08}]`))
	})
	defer server.Close()

	rates, err := client.FetchForexRates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rates["USD/CNY"] != 7.24 {
		t.Errorf("forex lookup broken: %+v", rates)
	}
}
