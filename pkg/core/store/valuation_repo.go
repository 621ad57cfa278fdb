package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dcf_valuation/pkg/core/dcf"
)

// ValuationRun is one complete valuation as persisted: the inputs, the
// result, and the sensitivity output, keyed by a run id.
type ValuationRun struct {
	ID          string               `json:"id"`
	Ticker      string               `json:"ticker"`
	CompanyName string               `json:"company_name"`
	Currency    string               `json:"currency"`
	Params      dcf.ValuationParams  `json:"params"`
	Result      *dcf.ValuationResult `json:"result"`
	Sensitivity *dcf.SensitivityGrid `json:"sensitivity,omitempty"`
	WACCSeries  *dcf.WACCSensitivity `json:"wacc_series,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ValuationRepo stores and retrieves valuation runs.
//
// Schema (managed outside this package):
//
//	CREATE TABLE IF NOT EXISTS valuations (
//	  id UUID PRIMARY KEY,
//	  ticker TEXT NOT NULL,
//	  company_name TEXT,
//	  currency TEXT,
//	  price_per_share DOUBLE PRECISION,
//	  enterprise_value DOUBLE PRECISION,
//	  run_json JSONB NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX IF NOT EXISTS valuations_ticker_idx ON valuations (ticker, created_at DESC);
type ValuationRepo struct{}

func NewValuationRepo() *ValuationRepo {
	return &ValuationRepo{}
}

// Save persists one run. The run id is assigned here if empty.
func (r *ValuationRepo) Save(ctx context.Context, run *ValuationRun) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal valuation run: %w", err)
	}

	query := `
		INSERT INTO valuations (id, ticker, company_name, currency, price_per_share, enterprise_value, run_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	var price, ev float64
	if run.Result != nil {
		price = run.Result.PricePerShare
		ev = run.Result.EnterpriseValue
	}

	_, err = pool.Exec(ctx, query, run.ID, run.Ticker, run.CompanyName, run.Currency, price, ev, runJSON, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save valuation run: %w", err)
	}

	fmt.Printf("[STORE] Saved valuation %s for %s (price %.2f)\n", run.ID, run.Ticker, price)
	return nil
}

// LoadLatest retrieves the most recent run for a ticker.
func (r *ValuationRepo) LoadLatest(ctx context.Context, ticker string) (*ValuationRun, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT run_json FROM valuations
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1;
	`

	var runJSON []byte
	if err := pool.QueryRow(ctx, query, ticker).Scan(&runJSON); err != nil {
		return nil, fmt.Errorf("no stored valuation for %s: %w", ticker, err)
	}

	var run ValuationRun
	if err := json.Unmarshal(runJSON, &run); err != nil {
		return nil, fmt.Errorf("failed to decode stored valuation: %w", err)
	}
	return &run, nil
}
