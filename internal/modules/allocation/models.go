package allocation

import "time"

// Target represents the target weight for one symbol
type Target struct {
	Symbol    string    `json:"symbol"`
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TargetSet is the active target allocation, symbol → raw weight.
// Weights are relative; the optimizer normalizes by their sum.
type TargetSet map[string]float64

// File is the on-disk shape of the allocation configuration
//
//	targets:
//	  VTI: 65
//	  VXUS: 35
type File struct {
	Targets map[string]float64 `yaml:"targets"`
}
