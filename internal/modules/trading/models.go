package trading

// ExecuteStatus is the outcome of one order attempt
type ExecuteStatus string

const (
	StatusPlaced  ExecuteStatus = "placed"
	StatusDryRun  ExecuteStatus = "dry_run"
	StatusError   ExecuteStatus = "error"
	StatusSkipped ExecuteStatus = "skipped"
)

// ExecuteResult represents the result of executing one plan entry
type ExecuteResult struct {
	Symbol        string        `json:"symbol"`
	Shares        int           `json:"shares"`
	LimitPrice    float64       `json:"limit_price"`
	EstimatedCost float64       `json:"estimated_cost"`
	Status        ExecuteStatus `json:"status"`
	OrderID       string        `json:"order_id,omitempty"`
	Error         *string       `json:"error,omitempty"`
}

// Placed reports whether the order reached the broker
func (r ExecuteResult) Placed() bool {
	return r.Status == StatusPlaced
}
