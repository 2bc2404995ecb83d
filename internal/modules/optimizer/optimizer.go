// Package optimizer decides how many whole shares of each instrument to
// buy so that the resulting portfolio most closely matches a set of
// target weights. It is a pure computation: no I/O, no retained state.
package optimizer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/avasilakis/autoinvest/internal/domain"
)

// ErrNegativeWeight indicates a malformed target allocation. This is a
// configuration fault and aborts the run before any computation.
var ErrNegativeWeight = errors.New("target allocation contains a negative weight")

// improvementEpsilon bounds float comparison when two candidate
// purchases reduce deviation by the same amount.
const improvementEpsilon = 1e-9

// candidate is the mutable working state for one buyable symbol
type candidate struct {
	symbol string
	price  float64
	ideal  float64 // target value after purchases, in account currency
	held   float64 // market value currently held
	shares int     // shares allocated so far this run
}

// value returns the candidate's market value including shares
// allocated so far.
func (c *candidate) value() float64 {
	return c.held + float64(c.shares)*c.price
}

// deficit returns how far the candidate currently sits below its ideal
// value. Negative means over target.
func (c *candidate) deficit() float64 {
	return c.ideal - c.value()
}

// ComputePlan computes a whole-share purchase plan that steers the
// portfolio toward the target weights using the available cash.
//
// The post-purchase portfolio size is cash plus the market value of all
// target symbols; each symbol's ideal value is its normalized weight
// times that total. Shares are allocated greedily, one at a time, to
// the affordable symbol whose next share most reduces its absolute
// deviation from ideal. Positions already at or above target are never
// bought, and nothing is ever sold.
//
// A cash amount of zero or less, an empty or all-zero target set, or a
// budget below every eligible price all yield an empty plan with a nil
// error; those are valid run outcomes, not faults. A negative target
// weight returns ErrNegativeWeight.
//
// Output is deterministic: identical inputs produce identical plans.
// Ties are broken toward the larger remaining deficit, then toward the
// lexicographically smaller symbol.
func ComputePlan(holdings Holdings, targets Targets, cash float64, prices Prices) (*Plan, error) {
	targetWeights := domain.NormalizeKeys(targets)
	heldValues := domain.NormalizeKeys(holdings)
	priceTable := domain.NormalizeKeys(prices)

	totalWeight := 0.0
	for symbol, weight := range targetWeights {
		if weight < 0 {
			return nil, fmt.Errorf("%w: %s=%v", ErrNegativeWeight, symbol, weight)
		}
		totalWeight += weight
	}

	plan := &Plan{Leftover: cash}

	if totalWeight == 0 {
		plan.Skipped = append(plan.Skipped, Skip{Symbol: "*", Reason: "no positive target weights"})
		return plan, nil
	}

	if cash <= 0 {
		return plan, nil
	}

	// Post-purchase portfolio size: cash counts as part of the
	// portfolio being steered toward target weights.
	total := cash
	for symbol := range targetWeights {
		total += heldValues[symbol]
	}

	candidates := make([]*candidate, 0, len(targetWeights))
	for symbol, weight := range targetWeights {
		if weight == 0 {
			continue
		}

		price, ok := priceTable[symbol]
		if !ok || price <= 0 {
			plan.Skipped = append(plan.Skipped, Skip{Symbol: symbol, Reason: "no usable price"})
			continue
		}

		candidates = append(candidates, &candidate{
			symbol: symbol,
			price:  price,
			ideal:  (weight / totalWeight) * total,
			held:   heldValues[symbol],
		})
	}

	sort.Slice(plan.Skipped, func(i, j int) bool {
		return plan.Skipped[i].Symbol < plan.Skipped[j].Symbol
	})

	if len(candidates) == 0 {
		return plan, nil
	}

	// Deterministic iteration order; also settles the final tie-break
	// since earlier candidates win exact ties.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].symbol < candidates[j].symbol
	})

	remaining := cash
	for {
		best := allocateOne(candidates, remaining)
		if best == nil {
			break
		}
		best.shares++
		remaining -= best.price
	}

	for _, c := range candidates {
		if c.shares == 0 {
			continue
		}
		plan.Purchases = append(plan.Purchases, Purchase{
			Symbol:        c.symbol,
			Shares:        c.shares,
			Price:         c.price,
			EstimatedCost: float64(c.shares) * c.price,
		})
	}
	plan.Leftover = remaining

	return plan, nil
}

// allocateOne selects the candidate whose next whole share yields the
// greatest reduction in absolute deviation from its ideal value.
// Returns nil when no candidate is both under target and affordable.
//
// The selection metric and tie-break live here so the policy can be
// adjusted in one place if reference outputs ever dictate otherwise.
func allocateOne(candidates []*candidate, remaining float64) *candidate {
	var best *candidate
	bestImprovement := 0.0

	for _, c := range candidates {
		if c.price > remaining {
			continue
		}

		currentDev := math.Abs(c.value() - c.ideal)
		newDev := math.Abs(c.value() + c.price - c.ideal)
		improvement := currentDev - newDev

		// Buying must strictly reduce deviation; an at-target or
		// over-target position never improves.
		if improvement <= 0 {
			continue
		}

		if best == nil || improvement > bestImprovement+improvementEpsilon {
			best = c
			bestImprovement = improvement
			continue
		}

		// Equal improvement: prefer the larger remaining deficit.
		// Candidates are sorted by symbol, so an exact tie keeps the
		// lexicographically smaller one.
		if improvement > bestImprovement-improvementEpsilon && c.deficit() > best.deficit()+improvementEpsilon {
			best = c
			bestImprovement = improvement
		}
	}

	return best
}
