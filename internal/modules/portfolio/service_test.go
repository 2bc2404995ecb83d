package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilakis/autoinvest/internal/clients/brokerage"
	"github.com/avasilakis/autoinvest/pkg/logger"
)

func TestBuildSnapshot_QuotesWinOverPositionPrices(t *testing.T) {
	svc := NewService(logger.New(logger.Config{Level: "error"}))

	positions := []brokerage.Position{
		{Symbol: "vti", Quantity: 10, CurrentPrice: 248, MarketValue: 2480},
		{Symbol: "VXUS", Quantity: 25, CurrentPrice: 59, MarketValue: 1475},
	}
	quotes := map[string]float64{"VTI": 250}

	snapshot := svc.BuildSnapshot(positions, quotes, 1000)

	assert.Equal(t, 2480.0, snapshot.Holdings["VTI"])
	assert.Equal(t, 1475.0, snapshot.Holdings["VXUS"])
	assert.Equal(t, 250.0, snapshot.Prices["VTI"], "live quote should win")
	assert.Equal(t, 59.0, snapshot.Prices["VXUS"], "position price kept when unquoted")
	assert.Equal(t, 4955.0, snapshot.TotalValue())
}

func TestBuildSnapshot_ComputesMissingMarketValue(t *testing.T) {
	svc := NewService(logger.New(logger.Config{Level: "error"}))

	positions := []brokerage.Position{
		{Symbol: "AAA", Quantity: 4, CurrentPrice: 0, MarketValue: 0},
	}
	quotes := map[string]float64{"AAA": 50}

	snapshot := svc.BuildSnapshot(positions, quotes, 0)
	assert.Equal(t, 200.0, snapshot.Holdings["AAA"])
}

func TestAllocationStatuses(t *testing.T) {
	svc := NewService(logger.New(logger.Config{Level: "error"}))

	snapshot := &Snapshot{
		Holdings: map[string]float64{"VTI": 6500, "VXUS": 1500},
		Prices:   map[string]float64{"VTI": 250, "VXUS": 60},
		Cash:     1000,
	}

	statuses := svc.AllocationStatuses(snapshot, map[string]float64{"VTI": 65, "VXUS": 35})
	require.Len(t, statuses, 2)

	vti, vxus := statuses[0], statuses[1]
	assert.Equal(t, "VTI", vti.Symbol)
	assert.InDelta(t, 0.65, vti.TargetPct, 1e-9)
	assert.InDelta(t, 6500.0/9000.0, vti.CurrentPct, 1e-9)
	assert.Greater(t, vti.Deviation, 0.0, "VTI is overweight")

	assert.Equal(t, "VXUS", vxus.Symbol)
	assert.Less(t, vxus.Deviation, 0.0, "VXUS is underweight")
}

func TestAllocationStatuses_EmptyTargets(t *testing.T) {
	svc := NewService(logger.New(logger.Config{Level: "error"}))
	snapshot := &Snapshot{Holdings: map[string]float64{}, Cash: 100}

	assert.Nil(t, svc.AllocationStatuses(snapshot, nil))
}
