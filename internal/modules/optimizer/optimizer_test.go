package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlan_UnderweightSymbolBoughtFirst(t *testing.T) {
	// VXUS sits well below its 35% target; all cash should go there.
	plan, err := ComputePlan(
		Holdings{"VTI": 6500, "VXUS": 1500},
		Targets{"VTI": 65, "VXUS": 35},
		1000,
		Prices{"VTI": 250, "VXUS": 60},
	)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "VXUS", plan.Purchases[0].Symbol)
	assert.Equal(t, 16, plan.Purchases[0].Shares)
	assert.InDelta(t, 960.0, plan.Purchases[0].EstimatedCost, 1e-9)
	assert.InDelta(t, 40.0, plan.Leftover, 1e-9)
}

func TestComputePlan_ZeroCash(t *testing.T) {
	plan, err := ComputePlan(
		Holdings{"VTI": 5000},
		Targets{"VTI": 100},
		0,
		Prices{"VTI": 250},
	)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestComputePlan_NegativeCash(t *testing.T) {
	plan, err := ComputePlan(nil, Targets{"VTI": 100}, -250, Prices{"VTI": 250})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestComputePlan_MostUnderTargetGetsEverything(t *testing.T) {
	// A is already over its 50% target; every share goes to B.
	plan, err := ComputePlan(
		Holdings{"A": 1000, "B": 0},
		Targets{"A": 50, "B": 50},
		100,
		Prices{"A": 10, "B": 10},
	)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "B", plan.Purchases[0].Symbol)
	assert.Equal(t, 10, plan.Purchases[0].Shares)
	assert.InDelta(t, 0.0, plan.Leftover, 1e-9)
}

func TestComputePlan_MissingPriceExcludesSymbol(t *testing.T) {
	plan, err := ComputePlan(
		Holdings{},
		Targets{"AAA": 50, "BBB": 50},
		500,
		Prices{"AAA": 50},
	)
	require.NoError(t, err)

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "BBB", plan.Skipped[0].Symbol)

	// AAA is still allocated normally.
	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "AAA", plan.Purchases[0].Symbol)
	assert.Greater(t, plan.Purchases[0].Shares, 0)
}

func TestComputePlan_AllPricesMissing(t *testing.T) {
	plan, err := ComputePlan(nil, Targets{"AAA": 60, "BBB": 40}, 500, Prices{})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
	assert.Len(t, plan.Skipped, 2)
}

func TestComputePlan_EmptyTargets(t *testing.T) {
	plan, err := ComputePlan(Holdings{"VTI": 1000}, Targets{}, 500, Prices{"VTI": 100})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestComputePlan_AllZeroWeights(t *testing.T) {
	plan, err := ComputePlan(nil, Targets{"AAA": 0, "BBB": 0}, 500, Prices{"AAA": 10, "BBB": 10})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestComputePlan_NegativeWeightRejected(t *testing.T) {
	_, err := ComputePlan(nil, Targets{"AAA": 60, "BBB": -10}, 500, Prices{"AAA": 10, "BBB": 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestComputePlan_CashBelowCheapestShare(t *testing.T) {
	plan, err := ComputePlan(nil, Targets{"AAA": 100}, 5, Prices{"AAA": 10})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
	assert.InDelta(t, 5.0, plan.Leftover, 1e-9)
}

func TestComputePlan_NeverOverspends(t *testing.T) {
	cases := []struct {
		name    string
		cash    float64
		targets Targets
		prices  Prices
	}{
		{"even split", 1000, Targets{"A": 50, "B": 50}, Prices{"A": 33, "B": 77}},
		{"awkward prices", 517.23, Targets{"A": 10, "B": 30, "C": 60}, Prices{"A": 49.99, "B": 120.5, "C": 8.31}},
		{"single expensive", 999, Targets{"A": 100}, Prices{"A": 500}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ComputePlan(Holdings{}, tc.targets, tc.cash, tc.prices)
			require.NoError(t, err)
			assert.LessOrEqual(t, plan.TotalCost(), tc.cash+1e-9)
			assert.InDelta(t, tc.cash-plan.TotalCost(), plan.Leftover, 1e-6)
			for _, p := range plan.Purchases {
				assert.Greater(t, p.Shares, 0)
			}
		})
	}
}

func TestComputePlan_Deterministic(t *testing.T) {
	holdings := Holdings{"AAA": 2000, "BBB": 500, "CCC": 0}
	targets := Targets{"AAA": 40, "BBB": 40, "CCC": 20}
	prices := Prices{"AAA": 101.5, "BBB": 47.2, "CCC": 12.9}

	first, err := ComputePlan(holdings, targets, 2500, prices)
	require.NoError(t, err)
	second, err := ComputePlan(holdings, targets, 2500, prices)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputePlan_NormalizationInvariance(t *testing.T) {
	holdings := Holdings{"AAA": 3000, "BBB": 1000}
	prices := Prices{"AAA": 85, "BBB": 42}

	base, err := ComputePlan(holdings, Targets{"AAA": 65, "BBB": 35}, 1500, prices)
	require.NoError(t, err)

	scaled, err := ComputePlan(holdings, Targets{"AAA": 6.5, "BBB": 3.5}, 1500, prices)
	require.NoError(t, err)

	assert.Equal(t, base, scaled)
}

func TestComputePlan_MonotonicInCash(t *testing.T) {
	holdings := Holdings{"AAA": 1200, "BBB": 300}
	targets := Targets{"AAA": 50, "BBB": 50}
	prices := Prices{"AAA": 60, "BBB": 25}

	prev := 0
	for _, cash := range []float64{100, 250, 500, 750, 1000, 2000} {
		plan, err := ComputePlan(holdings, targets, cash, prices)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, plan.TotalShares(), prev, "cash=%v", cash)
		prev = plan.TotalShares()
	}
}

func TestComputePlan_SymbolsCaseNormalized(t *testing.T) {
	plan, err := ComputePlan(
		Holdings{"vti ": 0},
		Targets{"vti": 100},
		300,
		Prices{"VTI": 100},
	)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "VTI", plan.Purchases[0].Symbol)
	assert.Equal(t, 3, plan.Purchases[0].Shares)
}

func TestComputePlan_TieBreakLexicographic(t *testing.T) {
	// Identical weights, holdings and prices: the first pick ties on
	// both improvement and deficit, so the lexicographically smaller
	// symbol must win it.
	plan, err := ComputePlan(
		Holdings{},
		Targets{"BBB": 50, "AAA": 50},
		100,
		Prices{"AAA": 10, "BBB": 10},
	)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 2)
	assert.Equal(t, "AAA", plan.Purchases[0].Symbol)
	assert.Equal(t, "BBB", plan.Purchases[1].Symbol)
	assert.Equal(t, 5, plan.Purchases[0].Shares)
	assert.Equal(t, 5, plan.Purchases[1].Shares)
	assert.InDelta(t, 0.0, plan.Leftover, 1e-9)
}

func TestComputePlan_NoOvershootPastTarget(t *testing.T) {
	// Deficit of 30 with a price of 100: buying would swing the
	// position from 30 under to 70 over, so nothing is bought.
	plan, err := ComputePlan(
		Holdings{"AAA": 470, "BBB": 500},
		Targets{"AAA": 50, "BBB": 50},
		30,
		Prices{"AAA": 100, "BBB": 100},
	)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestComputePlan_CheapFillAfterExpensiveRunsOut(t *testing.T) {
	// Once remaining cash drops below the expensive share price, the
	// cheaper symbol keeps absorbing the rest.
	plan, err := ComputePlan(
		Holdings{},
		Targets{"CHEAP": 50, "DEAR": 50},
		1000,
		Prices{"CHEAP": 30, "DEAR": 400},
	)
	require.NoError(t, err)

	total := plan.TotalCost()
	assert.LessOrEqual(t, total, 1000.0)
	// Leftover must be smaller than the cheapest still-underweight price
	// or every candidate must be at/over target.
	if plan.Leftover >= 30 {
		bought := map[string]int{}
		for _, p := range plan.Purchases {
			bought[p.Symbol] = p.Shares
		}
		cheapValue := float64(bought["CHEAP"]) * 30
		assert.GreaterOrEqual(t, cheapValue+15, 500.0, "cheap position should be near target when cash remains")
	}
}

func TestPlan_Helpers(t *testing.T) {
	plan := &Plan{
		Purchases: []Purchase{
			{Symbol: "AAA", Shares: 2, Price: 10, EstimatedCost: 20},
			{Symbol: "BBB", Shares: 1, Price: 5, EstimatedCost: 5},
		},
		Leftover: 1,
	}

	assert.InDelta(t, 25.0, plan.TotalCost(), 1e-9)
	assert.Equal(t, 3, plan.TotalShares())
	assert.Equal(t, []string{"AAA", "BBB"}, plan.Symbols())
	assert.False(t, plan.IsEmpty())
}

func TestComputePlan_IdealValuesIncludeHoldings(t *testing.T) {
	// Total portfolio is cash + held value, so ideal for a 50% target
	// on 1000 held + 1000 cash is 1000 each: A needs nothing.
	plan, err := ComputePlan(
		Holdings{"A": 1000, "B": 0},
		Targets{"A": 50, "B": 50},
		1000,
		Prices{"A": 10, "B": 10},
	)
	require.NoError(t, err)

	require.Len(t, plan.Purchases, 1)
	assert.Equal(t, "B", plan.Purchases[0].Symbol)
	assert.Equal(t, 100, plan.Purchases[0].Shares)
	assert.InDelta(t, 0.0, plan.Leftover, 1e-9)
}

func TestComputePlan_FractionalDeficitRounding(t *testing.T) {
	// Whole shares only: no fractional counts regardless of deficits.
	plan, err := ComputePlan(
		Holdings{"A": 123.45},
		Targets{"A": 70, "B": 30},
		333.33,
		Prices{"A": 41.7, "B": 13.09},
	)
	require.NoError(t, err)

	for _, p := range plan.Purchases {
		assert.Equal(t, float64(p.Shares), math.Trunc(float64(p.Shares)))
		assert.GreaterOrEqual(t, p.Shares, 1)
	}
	assert.LessOrEqual(t, plan.TotalCost(), 333.33+1e-9)
}
