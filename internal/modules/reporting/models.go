package reporting

import (
	"time"

	"github.com/avasilakis/autoinvest/internal/modules/optimizer"
	"github.com/avasilakis/autoinvest/internal/modules/trading"
)

// DriftSummary aggregates how far current weights sit from targets
type DriftSummary struct {
	MeanAbsPct float64 `json:"mean_abs_pct"` // mean |current - target|, in weight fraction
	MaxAbsPct  float64 `json:"max_abs_pct"`
}

// SymbolIndicator carries best-effort indicator enrichment for one
// purchased symbol. Nil values mean the data was unavailable.
type SymbolIndicator struct {
	Symbol string   `json:"symbol"`
	RSI14  *float64 `json:"rsi_14,omitempty"`
}

// RunReport is the durable record of one investment cycle
type RunReport struct {
	ID          string                  `json:"id"`
	CreatedAt   time.Time               `json:"created_at"`
	DryRun      bool                    `json:"dry_run"`
	Cash        float64                 `json:"cash"`
	Spent       float64                 `json:"spent"`
	Leftover    float64                 `json:"leftover"`
	Plan        *optimizer.Plan         `json:"plan"`
	Orders      []trading.ExecuteResult `json:"orders,omitempty"`
	DriftBefore DriftSummary            `json:"drift_before"`
	DriftAfter  DriftSummary            `json:"drift_after"`
	Indicators  []SymbolIndicator       `json:"indicators,omitempty"`
}
