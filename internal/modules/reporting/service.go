package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avasilakis/autoinvest/internal/modules/optimizer"
	"github.com/avasilakis/autoinvest/internal/modules/portfolio"
	"github.com/avasilakis/autoinvest/internal/modules/trading"
	"github.com/avasilakis/autoinvest/pkg/formulas"
)

// rsiPeriod is the standard 14-day RSI window
const rsiPeriod = 14

// HistoryProvider supplies daily closes for indicator enrichment
type HistoryProvider interface {
	GetDailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
}

// Service builds and persists run reports
type Service struct {
	portfolio *portfolio.Service
	history   HistoryProvider
	repo      *Repository
	log       zerolog.Logger
}

// NewService creates a new reporting service. history may be nil, in
// which case indicator enrichment is skipped.
func NewService(pf *portfolio.Service, history HistoryProvider, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		portfolio: pf,
		history:   history,
		repo:      repo,
		log:       log.With().Str("service", "reporting").Logger(),
	}
}

// Build assembles the report for one completed cycle: spend totals,
// weight drift before and after the plan, and indicator enrichment for
// purchased symbols.
func (s *Service) Build(
	ctx context.Context,
	snapshot *portfolio.Snapshot,
	targets map[string]float64,
	plan *optimizer.Plan,
	orders []trading.ExecuteResult,
	dryRun bool,
) *RunReport {
	report := &RunReport{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		DryRun:    dryRun,
		Cash:      snapshot.Cash,
		Spent:     plan.TotalCost(),
		Leftover:  plan.Leftover,
		Plan:      plan,
		Orders:    orders,
	}

	report.DriftBefore = s.drift(snapshot, targets)
	report.DriftAfter = s.drift(applyPlan(snapshot, plan), targets)
	report.Indicators = s.enrich(ctx, plan)

	return report
}

// Record persists a report, logging rather than failing the cycle on
// storage errors.
func (s *Service) Record(report *RunReport) {
	if err := s.repo.Save(report); err != nil {
		s.log.Error().Err(err).Str("run_id", report.ID).Msg("Failed to persist run report")
	}
}

// Recent returns the most recent run reports
func (s *Service) Recent(limit int) ([]*RunReport, error) {
	return s.repo.Recent(limit)
}

func (s *Service) drift(snapshot *portfolio.Snapshot, targets map[string]float64) DriftSummary {
	statuses := s.portfolio.AllocationStatuses(snapshot, targets)
	deviations := make([]float64, len(statuses))
	for i, st := range statuses {
		deviations[i] = st.Deviation
	}

	return DriftSummary{
		MeanAbsPct: formulas.MeanAbsDeviation(deviations),
		MaxAbsPct:  formulas.MaxAbs(deviations),
	}
}

func (s *Service) enrich(ctx context.Context, plan *optimizer.Plan) []SymbolIndicator {
	if s.history == nil || plan.IsEmpty() {
		return nil
	}

	indicators := make([]SymbolIndicator, 0, len(plan.Purchases))
	for _, purchase := range plan.Purchases {
		indicator := SymbolIndicator{Symbol: purchase.Symbol}

		closes, err := s.history.GetDailyCloses(ctx, purchase.Symbol, rsiPeriod*3)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", purchase.Symbol).Msg("History unavailable, skipping RSI")
		} else {
			indicator.RSI14 = formulas.CalculateRSI(closes, rsiPeriod)
		}

		indicators = append(indicators, indicator)
	}

	return indicators
}

// applyPlan projects the snapshot as if the plan filled at its limit
// prices: holdings grow by each purchase's cost, cash drops to the
// plan's leftover.
func applyPlan(snapshot *portfolio.Snapshot, plan *optimizer.Plan) *portfolio.Snapshot {
	after := &portfolio.Snapshot{
		Holdings: make(map[string]float64, len(snapshot.Holdings)),
		Prices:   snapshot.Prices,
		Cash:     plan.Leftover,
	}
	for symbol, value := range snapshot.Holdings {
		after.Holdings[symbol] = value
	}
	for _, purchase := range plan.Purchases {
		after.Holdings[purchase.Symbol] += purchase.EstimatedCost
	}
	return after
}
