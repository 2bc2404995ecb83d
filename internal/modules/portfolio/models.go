package portfolio

// Snapshot is the optimizer-facing view of the account at one moment:
// per-symbol market values and per-share prices, keyed by normalized
// symbol. Built fresh per cycle and discarded.
type Snapshot struct {
	Holdings map[string]float64 `json:"holdings"` // symbol → market value
	Prices   map[string]float64 `json:"prices"`   // symbol → share price
	Cash     float64            `json:"cash"`
}

// TotalValue returns cash plus the market value of all holdings
func (s *Snapshot) TotalValue() float64 {
	total := s.Cash
	for _, value := range s.Holdings {
		total += value
	}
	return total
}

// AllocationStatus compares one symbol's current weight to its target
type AllocationStatus struct {
	Symbol       string  `json:"symbol"`
	TargetPct    float64 `json:"target_pct"`
	CurrentPct   float64 `json:"current_pct"`
	CurrentValue float64 `json:"current_value"`
	Deviation    float64 `json:"deviation"` // current - target; negative = underweight
}
