package reporting

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilakis/autoinvest/internal/database"
	"github.com/avasilakis/autoinvest/internal/modules/optimizer"
	"github.com/avasilakis/autoinvest/internal/modules/portfolio"
	"github.com/avasilakis/autoinvest/pkg/logger"
)

type fakeHistory struct {
	closes map[string][]float64
}

func (f *fakeHistory) GetDailyCloses(_ context.Context, symbol string, _ int) ([]float64, error) {
	closes, ok := f.closes[symbol]
	if !ok {
		return nil, fmt.Errorf("no history for %s", symbol)
	}
	return closes, nil
}

func newTestService(t *testing.T, history HistoryProvider) *Service {
	t.Helper()
	log := logger.New(logger.Config{Level: "error"})

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSchema(db.Conn()))

	return NewService(portfolio.NewService(log), history, NewRepository(db.Conn(), log), log)
}

func vxusScenario() (*portfolio.Snapshot, map[string]float64, *optimizer.Plan) {
	snapshot := &portfolio.Snapshot{
		Holdings: map[string]float64{"VTI": 6500, "VXUS": 1500},
		Prices:   map[string]float64{"VTI": 250, "VXUS": 60},
		Cash:     1000,
	}
	targets := map[string]float64{"VTI": 65, "VXUS": 35}
	plan := &optimizer.Plan{
		Purchases: []optimizer.Purchase{
			{Symbol: "VXUS", Shares: 16, Price: 60, EstimatedCost: 960},
		},
		Leftover: 40,
	}
	return snapshot, targets, plan
}

func TestBuild_DriftShrinksAfterPlan(t *testing.T) {
	svc := newTestService(t, nil)
	snapshot, targets, plan := vxusScenario()

	report := svc.Build(context.Background(), snapshot, targets, plan, nil, true)

	assert.NotEmpty(t, report.ID)
	assert.True(t, report.DryRun)
	assert.InDelta(t, 960.0, report.Spent, 1e-9)
	assert.InDelta(t, 40.0, report.Leftover, 1e-9)
	assert.Less(t, report.DriftAfter.MaxAbsPct, report.DriftBefore.MaxAbsPct,
		"buying the underweight symbol must reduce drift")
	assert.Nil(t, report.Indicators, "no enrichment without a history provider")
}

func TestBuild_IndicatorEnrichment(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 55 + float64(i)*0.2
	}
	svc := newTestService(t, &fakeHistory{closes: map[string][]float64{"VXUS": closes}})
	snapshot, targets, plan := vxusScenario()

	report := svc.Build(context.Background(), snapshot, targets, plan, nil, true)

	require.Len(t, report.Indicators, 1)
	assert.Equal(t, "VXUS", report.Indicators[0].Symbol)
	require.NotNil(t, report.Indicators[0].RSI14)
	assert.Greater(t, *report.Indicators[0].RSI14, 50.0)
}

func TestBuild_HistoryErrorIsTolerated(t *testing.T) {
	svc := newTestService(t, &fakeHistory{})
	snapshot, targets, plan := vxusScenario()

	report := svc.Build(context.Background(), snapshot, targets, plan, nil, false)

	require.Len(t, report.Indicators, 1)
	assert.Nil(t, report.Indicators[0].RSI14)
}

func TestRecordAndRecent(t *testing.T) {
	svc := newTestService(t, nil)
	snapshot, targets, plan := vxusScenario()

	first := svc.Build(context.Background(), snapshot, targets, plan, nil, true)
	svc.Record(first)

	reports, err := svc.Recent(10)
	require.NoError(t, err)

	require.Len(t, reports, 1)
	assert.Equal(t, first.ID, reports[0].ID)
	require.NotNil(t, reports[0].Plan)
	assert.Equal(t, plan.Purchases, reports[0].Plan.Purchases)
}
