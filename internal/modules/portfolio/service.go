package portfolio

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/avasilakis/autoinvest/internal/clients/brokerage"
	"github.com/avasilakis/autoinvest/internal/domain"
)

// Service builds optimizer-facing snapshots from broker data
type Service struct {
	log zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "portfolio").Logger(),
	}
}

// BuildSnapshot merges broker positions, quotes and cash into a
// snapshot. Quotes win over position-reported prices since they are
// fresher; positions without a live quote keep the broker's price so
// their value still counts toward the portfolio total.
func (s *Service) BuildSnapshot(positions []brokerage.Position, quotes map[string]float64, cash float64) *Snapshot {
	snapshot := &Snapshot{
		Holdings: make(map[string]float64, len(positions)),
		Prices:   make(map[string]float64, len(quotes)),
		Cash:     cash,
	}

	for symbol, price := range quotes {
		snapshot.Prices[domain.NormalizeSymbol(symbol)] = price
	}

	for _, pos := range positions {
		symbol := domain.NormalizeSymbol(pos.Symbol)

		value := pos.MarketValue
		if value == 0 && pos.Quantity > 0 {
			price := snapshot.Prices[symbol]
			if price == 0 {
				price = pos.CurrentPrice
			}
			value = pos.Quantity * price
		}
		snapshot.Holdings[symbol] += value

		if _, ok := snapshot.Prices[symbol]; !ok && pos.CurrentPrice > 0 {
			snapshot.Prices[symbol] = pos.CurrentPrice
		}
	}

	s.log.Debug().
		Int("positions", len(positions)).
		Int("priced", len(snapshot.Prices)).
		Float64("cash", cash).
		Msg("Snapshot built")

	return snapshot
}

// AllocationStatuses computes current vs target weight per symbol,
// ordered by symbol. Weights are fractions of the snapshot total
// (cash included); targets are normalized by their sum.
func (s *Service) AllocationStatuses(snapshot *Snapshot, targets map[string]float64) []AllocationStatus {
	totalWeight := 0.0
	for _, w := range targets {
		totalWeight += w
	}

	total := snapshot.Cash
	for symbol := range targets {
		total += snapshot.Holdings[domain.NormalizeSymbol(symbol)]
	}

	if totalWeight == 0 || total == 0 {
		return nil
	}

	statuses := make([]AllocationStatus, 0, len(targets))
	for symbol, weight := range targets {
		normalized := domain.NormalizeSymbol(symbol)
		value := snapshot.Holdings[normalized]
		currentPct := value / total
		targetPct := weight / totalWeight

		statuses = append(statuses, AllocationStatus{
			Symbol:       normalized,
			TargetPct:    targetPct,
			CurrentPct:   currentPct,
			CurrentValue: value,
			Deviation:    currentPct - targetPct,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Symbol < statuses[j].Symbol
	})

	return statuses
}
