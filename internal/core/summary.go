package core

// InsightsSummary is the derived aggregate over one bounded sample.
// It is recomputed on every request and never persisted; numeric fields
// are rounded to two decimal places before they reach the caller.
type InsightsSummary struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalIncome       float64 `json:"total_income"`
	TotalSpent        float64 `json:"total_spent"` // retains its negative sign
	AverageExpense    float64 `json:"average_expense"`
	TopCategory       string  `json:"top_category"`
	Summary           string  `json:"summary"`
}
