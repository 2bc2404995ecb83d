package formulas

import (
	"math"
	"testing"
)

func TestMeanAbsDeviation(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", []float64{}, 0},
		{"mixed signs", []float64{-0.02, 0.04, -0.06}, 0.04},
		{"all zero", []float64{0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MeanAbsDeviation(tt.data)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Expected %.6f, got %.6f", tt.expected, result)
			}
		})
	}
}

func TestMaxAbs(t *testing.T) {
	result := MaxAbs([]float64{-0.08, 0.03, 0.05})
	if math.Abs(result-0.08) > 1e-9 {
		t.Errorf("Expected 0.08, got %.6f", result)
	}

	if MaxAbs(nil) != 0 {
		t.Error("Expected 0 for empty input")
	}
}

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	if len(returns) != 2 {
		t.Fatalf("Expected 2 returns, got %d", len(returns))
	}
	if math.Abs(returns[0]-0.1) > 1e-9 {
		t.Errorf("Expected 0.1, got %.6f", returns[0])
	}
	if math.Abs(returns[1]+0.1) > 1e-9 {
		t.Errorf("Expected -0.1, got %.6f", returns[1])
	}
}

func TestCalculateRSI_InsufficientData(t *testing.T) {
	closes := []float64{100, 101, 102}
	if rsi := CalculateRSI(closes, 14); rsi != nil {
		t.Errorf("Expected nil RSI for insufficient data, got %.2f", *rsi)
	}
}

func TestCalculateRSI_AllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	rsi := CalculateRSI(closes, 14)
	if rsi == nil {
		t.Fatal("Expected RSI value, got nil")
	}
	if *rsi < 99 || *rsi > 100 {
		t.Errorf("Expected RSI near 100 for monotonic gains, got %.2f", *rsi)
	}
}
