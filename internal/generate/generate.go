// Package generate produces the synthetic transaction dataset used to
// seed the store. Output is deterministic for a given seed, including
// ids, so repeated bootstraps of the same configuration yield the same
// table.
package generate

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finsights/internal/core"
)

// DefaultSize is the number of rows a full dataset carries.
const DefaultSize = 1000

// merchantsByCategory is the bounded merchant vocabulary per category.
var merchantsByCategory = map[string][]string{
	"Food":          {"McDonald's", "Subway", "Starbucks", "Pizza Express", "Just Eat"},
	"Groceries":     {"Tesco", "Sainsbury's", "Lidl", "Aldi", "Waitrose"},
	"Transport":     {"Uber", "Trainline", "Shell", "BP Petrol", "Transport for London"},
	"Shopping":      {"Amazon", "Zara", "H&M", "IKEA", "Apple Store"},
	"Entertainment": {"Netflix", "Spotify", "Cineworld", "PlayStation Store"},
	"Utilities":     {"British Gas", "Thames Water", "EE Mobile", "Octopus Energy"},
	"Health":        {"Boots Pharmacy", "NHS Prescription", "PureGym", "Vision Express"},
	"Travel":        {"Ryanair", "Booking.com", "Airbnb", "EasyJet"},
	"Income":        {"Salary ACME Ltd", "Freelance Payment", "Tax Refund"},
	"Other":         {"PayPal", "TransferWise", "Bank Fee"},
}

var cities = []string{
	"London", "Manchester", "Bristol", "Leeds",
	"Edinburgh", "Birmingham", "Glasgow", "Liverpool",
}

var countries = []string{
	"United Kingdom", "Ireland", "France", "Germany",
	"Italy", "Spain", "Netherlands",
}

// Generator emits synthetic transactions from a seeded source.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New creates a generator. The same seed and reference time produce the
// same dataset.
func New(seed int64, now time.Time) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now.UTC().Truncate(24 * time.Hour),
	}
}

// Transaction emits one synthetic row. Amounts are 5.00–300.00 with two
// decimal places, negated unless the category is Income.
func (g *Generator) Transaction() core.Transaction {
	category := core.Categories[g.rng.Intn(len(core.Categories))]
	merchants := merchantsByCategory[category]
	merchant := merchants[g.rng.Intn(len(merchants))]

	cents := int64(500 + g.rng.Intn(29501)) // 5.00 .. 300.00
	amount := decimal.New(cents, -2)
	if category != "Income" {
		amount = amount.Neg()
	}

	date := g.now.AddDate(0, 0, -g.rng.Intn(365))
	city := cities[g.rng.Intn(len(cities))]

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		// rand.Rand.Read cannot fail; keep the row usable regardless.
		id = uuid.Nil
	}

	return core.Transaction{
		ID:          id.String(),
		Date:        core.Date{Time: date},
		Description: merchant + " " + city,
		Amount:      amount,
		Currency:    core.Currencies[g.rng.Intn(len(core.Currencies))],
		Merchant:    merchant,
		Category:    category,
		City:        city,
		Country:     countries[g.rng.Intn(len(countries))],
	}
}

// Dataset emits n synthetic rows.
func (g *Generator) Dataset(n int) []core.Transaction {
	out := make([]core.Transaction, n)
	for i := range out {
		out[i] = g.Transaction()
	}
	return out
}

// WriteCSV writes transactions to path in the store's bulk-load format:
// one header row matching core.ColumnNames, then one row per
// transaction.
func WriteCSV(path string, txs []core.Transaction) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dataset directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(core.ColumnNames); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.ID, t.Date.String(), t.Description, t.Amount.String(),
			t.Currency, t.Merchant, t.Category, t.City, t.Country,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
