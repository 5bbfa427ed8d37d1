package services

import (
	"math"
	"testing"
)

func TestCalcRFPBudget(t *testing.T) {
	tests := []struct {
		name   string
		items  []BudgetItem
		expect float64
	}{
		{
			name: "multiple items",
			items: []BudgetItem{
				{Qty: 100, BudgetUnitPrice: 300},
				{Qty: 100, BudgetUnitPrice: 80},
				{Qty: 100, BudgetUnitPrice: 50},
			},
			expect: 43000,
		},
		{"single item", []BudgetItem{{Qty: 10, BudgetUnitPrice: 99.5}}, 995},
		{"empty", []BudgetItem{}, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcRFPBudget(tt.items)
			if math.Abs(got-tt.expect) > 0.001 {
				t.Errorf("CalcRFPBudget() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestCalcBudgetDrift(t *testing.T) {
	tests := []struct {
		name          string
		budget        float64
		awarded       float64
		expectDrift   float64
		expectPercent float64
	}{
		{"under budget", 43000, 38000, -5000, -11.627906976744185},
		{"over budget", 40000, 44000, 4000, 10},
		{"on budget", 40000, 40000, 0, 0},
		{"zero budget guards division", 0, 500, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcBudgetDrift(tt.budget, tt.awarded)
			if math.Abs(got.Drift-tt.expectDrift) > 0.001 {
				t.Errorf("Drift = %v, want %v", got.Drift, tt.expectDrift)
			}
			if math.Abs(got.DriftPercent-tt.expectPercent) > 0.001 {
				t.Errorf("DriftPercent = %v, want %v", got.DriftPercent, tt.expectPercent)
			}
		})
	}
}
