package services

// BudgetItem is one RFP line with its budgeted unit price.
type BudgetItem struct {
	Qty             float64
	BudgetUnitPrice float64
}

// BudgetTotals holds an RFP's budget against the outcome of a comparison.
type BudgetTotals struct {
	TotalBudget  float64
	TotalAwarded float64
	Drift        float64
	DriftPercent float64
}

// CalcRFPBudget sums qty*unitPrice across the RFP's items.
func CalcRFPBudget(items []BudgetItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Qty * item.BudgetUnitPrice
	}
	return total
}

// CalcBudgetDrift compares the budgeted total against the awarded (or best
// offered) total. A positive drift means the project is over budget.
func CalcBudgetDrift(totalBudget, totalAwarded float64) BudgetTotals {
	totals := BudgetTotals{
		TotalBudget:  totalBudget,
		TotalAwarded: totalAwarded,
		Drift:        totalAwarded - totalBudget,
	}
	if totalBudget != 0 {
		totals.DriftPercent = (totals.Drift / totalBudget) * 100
	}
	return totals
}
