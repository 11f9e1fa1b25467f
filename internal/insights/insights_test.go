package insights

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"finsights/internal/core"
)

func tx(category string, amount float64) core.Transaction {
	return core.Transaction{
		ID:       "t-" + category,
		Date:     core.NewDate(2025, 1, 1),
		Amount:   decimal.NewFromFloat(amount),
		Currency: "EUR",
		Category: category,
	}
}

func TestCompute_EmptySample(t *testing.T) {
	_, err := Compute(nil)
	if !errors.Is(err, core.ErrEmptySample) {
		t.Fatalf("Compute(nil) = %v, want ErrEmptySample", err)
	}
}

func TestCompute_NoExpenses(t *testing.T) {
	sample := []core.Transaction{
		tx("Income", 1200),
		tx("Income", 300),
	}
	_, err := Compute(sample)
	if !errors.Is(err, core.ErrNoExpenses) {
		t.Fatalf("income-only sample = %v, want ErrNoExpenses", err)
	}
}

func TestCompute_Arithmetic(t *testing.T) {
	sample := []core.Transaction{
		tx("Income", 100),
		tx("Food", -20),
		tx("Transport", -30),
		tx("Shopping", -50),
	}

	got, err := Compute(sample)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if got.TotalTransactions != 4 {
		t.Errorf("TotalTransactions = %d, want 4", got.TotalTransactions)
	}
	if got.TotalIncome != 100 {
		t.Errorf("TotalIncome = %v, want 100", got.TotalIncome)
	}
	if got.TotalSpent != -100 {
		t.Errorf("TotalSpent = %v, want -100", got.TotalSpent)
	}
	if got.AverageExpense != -33.33 {
		t.Errorf("AverageExpense = %v, want -33.33", got.AverageExpense)
	}
}

func TestCompute_ZeroAmountRows(t *testing.T) {
	sample := []core.Transaction{
		tx("Other", 0),
		tx("Food", -10),
		tx("Income", 40),
	}

	got, err := Compute(sample)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// Zero rows count toward the total but not toward either partition.
	if got.TotalTransactions != 3 {
		t.Errorf("TotalTransactions = %d, want 3", got.TotalTransactions)
	}
	if got.TotalIncome != 40 {
		t.Errorf("TotalIncome = %v, want 40", got.TotalIncome)
	}
	if got.AverageExpense != -10 {
		t.Errorf("AverageExpense = %v, want -10", got.AverageExpense)
	}
}

func TestCompute_TopCategory(t *testing.T) {
	sample := []core.Transaction{
		tx("Food", -5), tx("Food", -5), tx("Food", -5),
		tx("Transport", -5), tx("Transport", -5),
	}

	got, err := Compute(sample)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got.TopCategory != "Food" {
		t.Errorf("TopCategory = %q, want Food", got.TopCategory)
	}
}

func TestCompute_TopCategoryTieBreak(t *testing.T) {
	// Transport and Food both occur twice; Transport appears first.
	sample := []core.Transaction{
		tx("Transport", -5),
		tx("Food", -5),
		tx("Food", -5),
		tx("Transport", -5),
		tx("Income", 50),
	}

	got, err := Compute(sample)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got.TopCategory != "Transport" {
		t.Errorf("TopCategory = %q, want Transport (earliest first occurrence wins ties)", got.TopCategory)
	}
}

func TestCompute_SummaryText(t *testing.T) {
	sample := []core.Transaction{
		tx("Income", 100),
		tx("Food", -20),
		tx("Food", -30),
		tx("Shopping", -50),
	}

	got, err := Compute(sample)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	want := "Your top spending category is Food. " +
		"You spent an average of 33.33 € per transaction. " +
		"Total spent: 100.00 €, total income: 100.00 €."
	if got.Summary != want {
		t.Errorf("Summary = %q, want %q", got.Summary, want)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	sample := []core.Transaction{
		tx("Income", 1234.56),
		tx("Utilities", -78.90),
		tx("Travel", -210.45),
	}

	first, err := Compute(sample)
	if err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	second, err := Compute(sample)
	if err != nil {
		t.Fatalf("second Compute: %v", err)
	}

	if first != second {
		t.Errorf("Compute is not deterministic: %+v vs %+v", first, second)
	}
	if first.Summary != second.Summary {
		t.Errorf("summary text differs across identical calls")
	}
}
