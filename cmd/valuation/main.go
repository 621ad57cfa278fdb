package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"dcf_valuation/pkg/core/analyst"
	"dcf_valuation/pkg/core/dcf"
	"dcf_valuation/pkg/core/fmp"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/export"
	"dcf_valuation/pkg/render"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	ticker := flag.String("ticker", "", "stock ticker, e.g. 600519.SS")
	period := flag.String("period", "annual", "statement period: annual or quarter")
	paramsFile := flag.String("params", "", "path to an hjson/json file overriding valuation assumptions")
	useAI := flag.Bool("ai", false, "ask the configured model to suggest assumptions")
	excelOut := flag.String("excel", "", "write the run to an xlsx workbook at this path")
	saveRun := flag.Bool("save", false, "persist the run to the database")
	flag.Parse()

	if *ticker == "" {
		fmt.Println("Usage: valuation -ticker 600519.SS [-period annual] [-params file.hjson] [-ai] [-excel out.xlsx] [-save]")
		os.Exit(1)
	}

	apiKey := os.Getenv("FMP_API_KEY")
	if apiKey == "" {
		fmt.Println("[FATAL] FMP_API_KEY is not set")
		os.Exit(1)
	}

	ctx := context.Background()
	client := fmp.NewClient(apiKey)

	fmt.Printf("[MAIN] Fetching %s (%s) financials...\n", *ticker, *period)
	history, err := client.FetchHistory(ctx, *ticker, *period, 10)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	profileRaw, err := client.FetchProfile(ctx, *ticker)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	shares, err := client.FetchSharesFloat(ctx, *ticker)
	if err != nil {
		fmt.Printf("[MAIN] Shares float unavailable: %v\n", err)
	}

	base, summaries, err := fmp.BuildBaseYear(history, profileRaw, shares, *period)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	profile := profileRaw.ToCompanyProfile()

	metrics, err := client.FetchKeyMetrics(ctx, *ticker, *period, 10)
	if err != nil {
		fmt.Printf("[MAIN] Key metrics unavailable: %v\n", err)
	}

	// Market risk premiums and forex are nice-to-have; the WACC falls back
	// to defaults without them.
	premiums, err := client.FetchMarketRiskPremiums(ctx)
	if err != nil {
		fmt.Printf("[MAIN] Risk premiums unavailable: %v\n", err)
	}
	var forex map[string]float64
	if profile.Currency != base.ReportedCurrency {
		forex, err = client.FetchForexRates(ctx)
		if err != nil {
			fmt.Printf("[MAIN] Forex rates unavailable: %v\n", err)
		}
	}

	waccRes := dcf.CalculateWACC(base, profile, premiums, forex)
	render.WACCBreakdown(os.Stdout, waccRes)

	params, err := buildParams(ctx, *ticker, base, profile, summaries, waccRes, *useAI, *paramsFile)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	result, err := dcf.Valuate(base, params)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	grid, err := dcf.GrowthMarginGrid(base, params)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	series, err := dcf.WACCSeries(base, params)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	render.ForecastTable(os.Stdout, profile.CompanyName, result)
	render.ValuationSummary(os.Stdout, result)
	render.SensitivityGrid(os.Stdout, grid)
	render.WACCSeries(os.Stdout, series)

	if *excelOut != "" {
		report := export.Report{
			Ticker:  *ticker,
			Profile: profile,
			Params:  params,
			WACC:    waccRes,
			Result:  result,
			Grid:    grid,
			Series:  series,
			History: summaries,
			Metrics: metrics,
		}
		if err := export.WriteFile(*excelOut, report); err != nil {
			fmt.Printf("[MAIN] Excel export failed: %v\n", err)
		}
	}

	if *saveRun {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[MAIN] Database unavailable, run not saved: %v\n", err)
		} else {
			defer store.Close()
			repo := store.NewValuationRepo()
			run := &store.ValuationRun{
				Ticker:      *ticker,
				CompanyName: profile.CompanyName,
				Currency:    result.ReportedCurrency,
				Params:      params,
				Result:      result,
				Sensitivity: grid,
				WACCSeries:  series,
			}
			if err := repo.Save(ctx, run); err != nil {
				fmt.Printf("[MAIN] Failed to save run: %v\n", err)
			}
		}
	}
}

// buildParams assembles the assumption set in three layers: data-derived
// defaults, then AI suggestions when requested, then the override file.
func buildParams(ctx context.Context, ticker string, base dcf.BaseYearData, profile dcf.CompanyProfile,
	summaries []fmp.YearSummary, waccRes dcf.WACCResult, useAI bool, paramsFile string) (dcf.ValuationParams, error) {

	country := profile.Country
	params := dcf.ValuationParams{
		BaseYear:       base.Year,
		RevenueGrowth1: base.RevenueGrowth,
		RevenueGrowth2: base.RevenueGrowth,
		EBITMargin:     marginPct(base),
		Convergence:    5,
		RevenueToIC1:   icRatio(base),
		RevenueToIC2:   icRatio(base),
		RevenueToIC3:   icRatio(base),
		TaxRate:        base.AverageTaxRate * 100,
		WACC:           waccRes.WACC * 100,
		TerminalWACC:   dcf.TerminalWACCFor(country),
		RONIC:          dcf.TerminalRONICFor(country, true),
		RiskFreeRate:   dcf.RiskFreeRateFor(country),
	}

	if useAI {
		cfg := loadLLMConfig()
		provider, err := llm.NewProvider(cfg.ActiveEngine)
		if err != nil {
			return params, err
		}
		a := analyst.New(provider)
		a.Model = cfg.ModelFor(cfg.ActiveEngine)
		suggestions, _, err := a.Suggest(ctx, analyst.Request{
			Ticker:         ticker,
			Profile:        profile,
			Base:           base,
			History:        summaries,
			CalculatedWACC: waccRes.WACC,
			CalculatedTax:  base.AverageTaxRate,
		})
		if err != nil {
			return params, err
		}
		params = suggestions.ToValuationParams(country, base.Year)
		fmt.Printf("[MAIN] Applied AI-suggested assumptions (growth %.1f%%/%.1f%%, margin %.1f%%)\n",
			params.RevenueGrowth1, params.RevenueGrowth2, params.EBITMargin)
	}

	if paramsFile != "" {
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return params, fmt.Errorf("failed to read params file: %w", err)
		}
		if err := utils.ParseHJSONToStruct(string(data), &params); err != nil {
			return params, fmt.Errorf("failed to parse params file: %w", err)
		}
		fmt.Printf("[MAIN] Applied overrides from %s\n", paramsFile)
	}

	return params, nil
}

func loadLLMConfig() llm.Config {
	var cfg llm.Config
	data, err := os.ReadFile("config/models.yaml")
	if err != nil {
		return cfg
	}
	yaml.Unmarshal(data, &cfg)
	return cfg
}

func marginPct(base dcf.BaseYearData) float64 {
	if base.Revenue == 0 {
		return 0
	}
	return base.EBIT / base.Revenue * 100
}

func icRatio(base dcf.BaseYearData) float64 {
	if base.InvestedCapital == 0 {
		return 0
	}
	return base.Revenue / base.InvestedCapital
}
