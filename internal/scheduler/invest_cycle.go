package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/avasilakis/autoinvest/internal/clients/brokerage"
	"github.com/avasilakis/autoinvest/internal/events"
	"github.com/avasilakis/autoinvest/internal/modules/allocation"
	"github.com/avasilakis/autoinvest/internal/modules/optimizer"
	"github.com/avasilakis/autoinvest/internal/modules/portfolio"
	"github.com/avasilakis/autoinvest/internal/modules/reporting"
	"github.com/avasilakis/autoinvest/internal/modules/trading"
	"github.com/avasilakis/autoinvest/internal/notify"
)

// cycleTimeout bounds one full fetch-optimize-execute pass
const cycleTimeout = 2 * time.Minute

// AccountReader is the broker surface the cycle reads from
type AccountReader interface {
	GetCashBalance(ctx context.Context) (float64, error)
	GetPositions(ctx context.Context) ([]brokerage.Position, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]float64, error)
}

// PlanExecutor places the orders for a computed plan
type PlanExecutor interface {
	Execute(ctx context.Context, plan *optimizer.Plan, cash float64) ([]trading.ExecuteResult, error)
	DryRun() bool
}

// InvestCycle is the job that runs one complete investment pass:
// fetch account state, compute the purchase plan, execute it, then
// record and announce the outcome.
type InvestCycle struct {
	broker     AccountReader
	allocation *allocation.Service
	portfolio  *portfolio.Service
	executor   PlanExecutor
	reporting  *reporting.Service
	notifiers  []notify.Notifier
	events     *events.Manager
	log        zerolog.Logger
}

// NewInvestCycle creates the investment cycle job
func NewInvestCycle(
	broker AccountReader,
	alloc *allocation.Service,
	pf *portfolio.Service,
	executor PlanExecutor,
	rep *reporting.Service,
	notifiers []notify.Notifier,
	ev *events.Manager,
	log zerolog.Logger,
) *InvestCycle {
	return &InvestCycle{
		broker:     broker,
		allocation: alloc,
		portfolio:  pf,
		executor:   executor,
		reporting:  rep,
		notifiers:  notifiers,
		events:     ev,
		log:        log.With().Str("job", "invest_cycle").Logger(),
	}
}

// Name returns the job name
func (c *InvestCycle) Name() string {
	return "invest_cycle"
}

// Run executes one investment cycle
func (c *InvestCycle) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	report, err := c.RunOnce(ctx)
	if err != nil {
		c.events.EmitError("invest_cycle", err, nil)
		return err
	}

	c.notify(report)
	return nil
}

// RunOnce performs the cycle and returns the run report
func (c *InvestCycle) RunOnce(ctx context.Context) (*reporting.RunReport, error) {
	c.events.Emit(events.CycleStarted, "invest_cycle", nil)

	targets, err := c.allocation.Active()
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target allocation configured")
	}

	snapshot, err := c.fetchSnapshot(ctx, targets)
	if err != nil {
		return nil, err
	}

	plan, err := optimizer.ComputePlan(snapshot.Holdings, optimizer.Targets(targets), snapshot.Cash, snapshot.Prices)
	if err != nil {
		return nil, fmt.Errorf("failed to compute plan: %w", err)
	}

	c.events.Emit(events.PlanComputed, "invest_cycle", map[string]interface{}{
		"purchases": len(plan.Purchases),
		"cost":      plan.TotalCost(),
		"leftover":  plan.Leftover,
	})

	var orders []trading.ExecuteResult
	if !plan.IsEmpty() {
		orders, err = c.executor.Execute(ctx, plan, snapshot.Cash)
		if err != nil {
			return nil, fmt.Errorf("failed to execute plan: %w", err)
		}
	} else {
		c.log.Info().Msg("Nothing to buy this cycle")
	}

	report := c.reporting.Build(ctx, snapshot, targets, plan, orders, c.executor.DryRun())
	c.reporting.Record(report)

	c.events.Emit(events.CycleCompleted, "invest_cycle", map[string]interface{}{
		"run_id": report.ID,
		"spent":  report.Spent,
	})

	return report, nil
}

// Preview computes a plan from live account state without executing,
// recording or notifying. Backs the on-demand plan API.
func (c *InvestCycle) Preview(ctx context.Context) (*optimizer.Plan, *portfolio.Snapshot, error) {
	targets, err := c.allocation.Active()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("no target allocation configured")
	}

	snapshot, err := c.fetchSnapshot(ctx, targets)
	if err != nil {
		return nil, nil, err
	}

	plan, err := optimizer.ComputePlan(snapshot.Holdings, optimizer.Targets(targets), snapshot.Cash, snapshot.Prices)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute plan: %w", err)
	}

	return plan, snapshot, nil
}

// fetchSnapshot gathers cash, positions and quotes concurrently, the
// way the account and quote endpoints are independent of each other.
func (c *InvestCycle) fetchSnapshot(ctx context.Context, targets allocation.TargetSet) (*portfolio.Snapshot, error) {
	symbols := make([]string, 0, len(targets))
	for symbol := range targets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var (
		wg        sync.WaitGroup
		cash      float64
		positions []brokerage.Position
		quotes    map[string]float64

		cashErr, posErr, quoteErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		cash, cashErr = c.broker.GetCashBalance(ctx)
	}()
	go func() {
		defer wg.Done()
		positions, posErr = c.broker.GetPositions(ctx)
	}()
	go func() {
		defer wg.Done()
		quotes, quoteErr = c.broker.GetQuotes(ctx, symbols)
	}()
	wg.Wait()

	if cashErr != nil {
		return nil, fmt.Errorf("failed to fetch cash balance: %w", cashErr)
	}
	if posErr != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", posErr)
	}
	if quoteErr != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", quoteErr)
	}

	return c.portfolio.BuildSnapshot(positions, quotes, cash), nil
}

func (c *InvestCycle) notify(report *reporting.RunReport) {
	subject, body := notify.BuildMessage(report)
	for _, n := range c.notifiers {
		if err := n.Send(subject, body); err != nil {
			c.log.Error().Err(err).Str("notifier", n.Name()).Msg("Notification failed")
		}
	}
}
