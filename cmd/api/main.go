package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/core/fmp"
	"dcf_valuation/pkg/core/llm"
	"dcf_valuation/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Model config is optional; the valuation endpoints run without it.
	configData, _ := os.ReadFile("config/models.yaml")
	var llmCfg llm.Config
	yaml.Unmarshal(configData, &llmCfg)
	if llmCfg.ActiveEngine != "" {
		fmt.Printf("[CONFIG] Active LLM engine: %s\n", llmCfg.ActiveEngine)
	}

	var client *fmp.Client
	if key := os.Getenv("FMP_API_KEY"); key != "" {
		client = fmp.NewClient(key)
	} else {
		fmt.Println("[WARNING] FMP_API_KEY not set; only inline valuation requests will work")
	}

	var repo *store.ValuationRepo
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database unavailable, runs will not be saved: %v\n", err)
		} else {
			defer store.Close()
			repo = store.NewValuationRepo()
		}
	}

	valuation.InitHandler(client, repo)
	if provider, err := llm.NewProvider(llmCfg.ActiveEngine); err == nil {
		valuation.InitAnalyst(provider, llmCfg.ModelFor(llmCfg.ActiveEngine))
	} else {
		fmt.Printf("[WARNING] %v; analyze endpoint disabled\n", err)
	}
	http.HandleFunc("/api/valuation/run", valuation.HandleRun)
	http.HandleFunc("/api/valuation/wacc", valuation.HandleWACC)
	http.HandleFunc("/api/valuation/analyze", valuation.HandleAnalyze)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/valuation/run")
	fmt.Println("  - POST /api/valuation/wacc")
	fmt.Println("  - POST /api/valuation/analyze")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
