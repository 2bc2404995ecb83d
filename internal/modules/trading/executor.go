package trading

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/avasilakis/autoinvest/internal/clients/brokerage"
	"github.com/avasilakis/autoinvest/internal/events"
	"github.com/avasilakis/autoinvest/internal/modules/optimizer"
)

// OrderPlacer places whole-share limit buy orders
type OrderPlacer interface {
	PlaceLimitBuy(ctx context.Context, symbol string, quantity int, limitPrice float64) (*brokerage.OrderResult, error)
}

// Executor turns a purchase plan into broker orders. The dry-run gate
// lives here, owned by the caller's configuration; the optimizer never
// sees it.
type Executor struct {
	broker OrderPlacer
	events *events.Manager
	dryRun bool
	log    zerolog.Logger
}

// NewExecutor creates a new order executor
func NewExecutor(broker OrderPlacer, ev *events.Manager, dryRun bool, log zerolog.Logger) *Executor {
	return &Executor{
		broker: broker,
		events: ev,
		dryRun: dryRun,
		log:    log.With().Str("service", "executor").Logger(),
	}
}

// DryRun reports whether the executor is gated
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Execute places one limit BUY per plan entry at the price the plan
// was computed against. cash is the budget the plan was computed for;
// a plan whose decimal-summed cost exceeds it is refused outright
// rather than partially executed.
func (e *Executor) Execute(ctx context.Context, plan *optimizer.Plan, cash float64) ([]ExecuteResult, error) {
	if err := e.checkBudget(plan, cash); err != nil {
		return nil, err
	}

	results := make([]ExecuteResult, 0, len(plan.Purchases))
	for _, purchase := range plan.Purchases {
		results = append(results, e.executeOne(ctx, purchase))
	}

	return results, nil
}

// checkBudget verifies the plan total against the cash budget using
// exact decimal arithmetic, so float drift in the plan can never turn
// into a real overspend at the broker.
func (e *Executor) checkBudget(plan *optimizer.Plan, cash float64) error {
	total := decimal.Zero
	for _, p := range plan.Purchases {
		cost := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Shares)))
		total = total.Add(cost)
	}

	budget := decimal.NewFromFloat(cash)
	if total.GreaterThan(budget) {
		return fmt.Errorf("plan cost %s exceeds cash budget %s", total.String(), budget.String())
	}

	return nil
}

func (e *Executor) executeOne(ctx context.Context, purchase optimizer.Purchase) ExecuteResult {
	result := ExecuteResult{
		Symbol:        purchase.Symbol,
		Shares:        purchase.Shares,
		LimitPrice:    purchase.Price,
		EstimatedCost: purchase.EstimatedCost,
	}

	e.log.Info().
		Str("symbol", purchase.Symbol).
		Int("shares", purchase.Shares).
		Float64("limit_price", purchase.Price).
		Float64("estimated_cost", purchase.EstimatedCost).
		Msg("Placing limit order")

	if e.dryRun {
		e.log.Info().Str("symbol", purchase.Symbol).Msg("DRY RUN: order not placed")
		result.Status = StatusDryRun
		return result
	}

	orderResult, err := e.broker.PlaceLimitBuy(ctx, purchase.Symbol, purchase.Shares, purchase.Price)
	if err != nil {
		e.log.Error().Err(err).Str("symbol", purchase.Symbol).Msg("Failed to place order")
		e.events.EmitError("trading", err, map[string]interface{}{"symbol": purchase.Symbol})

		errMsg := err.Error()
		result.Status = StatusError
		result.Error = &errMsg
		return result
	}

	e.events.Emit(events.OrderPlaced, "trading", map[string]interface{}{
		"symbol":   purchase.Symbol,
		"shares":   purchase.Shares,
		"order_id": orderResult.OrderID,
	})

	e.log.Info().
		Str("symbol", purchase.Symbol).
		Str("order_id", orderResult.OrderID).
		Msg("Order placed")

	result.Status = StatusPlaced
	result.OrderID = orderResult.OrderID
	return result
}
