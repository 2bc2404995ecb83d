package optimizer

// Holdings maps symbol to current market value.
// Symbols absent from the map are treated as zero current value.
type Holdings map[string]float64

// Targets maps symbol to target weight. Weights do not need to sum
// to 1; they are normalized by their sum before use.
type Targets map[string]float64

// Prices maps symbol to current per-share price.
type Prices map[string]float64

// Purchase is one line of a purchase plan
type Purchase struct {
	Symbol        string  `json:"symbol"`
	Shares        int     `json:"shares"`
	Price         float64 `json:"price"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Skip records a target symbol excluded from the run
type Skip struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Plan is the result of a ComputePlan call. Purchases are sorted by
// symbol and never include zero-share entries. The sum of estimated
// costs never exceeds the cash supplied.
type Plan struct {
	Purchases []Purchase `json:"purchases"`
	Leftover  float64    `json:"leftover"`
	Skipped   []Skip     `json:"skipped,omitempty"`
}

// TotalCost returns the total estimated cost of all purchases
func (p *Plan) TotalCost() float64 {
	total := 0.0
	for _, purchase := range p.Purchases {
		total += purchase.EstimatedCost
	}
	return total
}

// TotalShares returns the aggregate share count across all purchases
func (p *Plan) TotalShares() int {
	total := 0
	for _, purchase := range p.Purchases {
		total += purchase.Shares
	}
	return total
}

// IsEmpty reports whether the plan contains no purchases
func (p *Plan) IsEmpty() bool {
	return len(p.Purchases) == 0
}

// Symbols returns the symbols in the plan, in plan order
func (p *Plan) Symbols() []string {
	symbols := make([]string, 0, len(p.Purchases))
	for _, purchase := range p.Purchases {
		symbols = append(symbols, purchase.Symbol)
	}
	return symbols
}
