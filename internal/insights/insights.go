// Package insights computes summary statistics over a bounded,
// ordered transaction sample. Compute is a pure function: identical
// samples produce byte-identical summaries.
package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finsights/internal/core"
)

// Compute aggregates a sample into an InsightsSummary.
//
// Income and expense partitions are split by amount sign; zero-amount
// rows belong to neither partition but still count toward the total and
// the top-category tally. Ties on the top category go to the category
// whose first occurrence appears earliest in the sample.
func Compute(sample []core.Transaction) (core.InsightsSummary, error) {
	if len(sample) == 0 {
		return core.InsightsSummary{}, fmt.Errorf("compute insights: %w", core.ErrEmptySample)
	}

	var (
		income       decimal.Decimal
		spent        decimal.Decimal
		expenseCount int
		counts       = make(map[string]int, len(core.Categories))
		firstSeen    = make(map[string]int, len(core.Categories))
	)

	for i, tx := range sample {
		switch {
		case tx.Amount.IsPositive():
			income = income.Add(tx.Amount)
		case tx.Amount.IsNegative():
			spent = spent.Add(tx.Amount)
			expenseCount++
		}
		if _, seen := firstSeen[tx.Category]; !seen {
			firstSeen[tx.Category] = i
		}
		counts[tx.Category]++
	}

	if expenseCount == 0 {
		return core.InsightsSummary{}, fmt.Errorf("compute insights over %d rows: %w",
			len(sample), core.ErrNoExpenses)
	}

	avg := spent.Div(decimal.NewFromInt(int64(expenseCount)))
	top := topCategory(counts, firstSeen)

	summary := fmt.Sprintf(
		"Your top spending category is %s. "+
			"You spent an average of %s € per transaction. "+
			"Total spent: %s €, total income: %s €.",
		top,
		avg.Abs().StringFixed(2),
		spent.Abs().StringFixed(2),
		income.StringFixed(2),
	)

	return core.InsightsSummary{
		TotalTransactions: len(sample),
		TotalIncome:       round2(income),
		TotalSpent:        round2(spent),
		AverageExpense:    round2(avg),
		TopCategory:       top,
		Summary:           summary,
	}, nil
}

// topCategory picks the category with the highest count, breaking ties
// by earliest first occurrence in the sample.
func topCategory(counts, firstSeen map[string]int) string {
	var (
		best      string
		bestCount = -1
	)
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && firstSeen[cat] < firstSeen[best]) {
			best = cat
			bestCount = n
		}
	}
	return best
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
