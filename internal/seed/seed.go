// Package seed bulk-loads the transaction table from a CSV dataset.
// It is the external ingestion step: the engine never writes, so a
// malformed file must fail here, before the API is exposed.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"finsights/internal/core"
)

// Store is the write-side surface the seeder needs.
type Store interface {
	Count(ctx context.Context) (int64, error)
	InsertBatch(ctx context.Context, txs []core.Transaction) error
}

// LoadCSV reads a dataset file and parses every row. The header must
// match core.ColumnNames exactly; any mismatch is a schema error and
// aborts the load.
func LoadCSV(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	if err := checkSchema(header); err != nil {
		return nil, err
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset rows: %w", err)
	}

	txs := make([]core.Transaction, 0, len(records))
	for i, rec := range records {
		tx, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Run loads the dataset at path into the store. A non-empty store is
// left untouched, making repeated bootstraps idempotent.
func Run(ctx context.Context, store Store, path string) error {
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("check store before seeding: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Store already seeded, skipping load", "rows", n)
		return nil
	}

	txs, err := LoadCSV(path)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return fmt.Errorf("dataset %s holds no rows: %w", path, core.ErrInvalidArgument)
	}

	if err := store.InsertBatch(ctx, txs); err != nil {
		return fmt.Errorf("seed store from %s: %w", path, err)
	}

	slog.InfoContext(ctx, "Store seeded from dataset", "path", path, "rows", len(txs))
	return nil
}

func checkSchema(header []string) error {
	if len(header) != len(core.ColumnNames) {
		return fmt.Errorf("dataset has %d columns, want %d (%v): %w",
			len(header), len(core.ColumnNames), core.ColumnNames, core.ErrInvalidArgument)
	}
	for i, col := range core.ColumnNames {
		if header[i] != col {
			return fmt.Errorf("dataset column %d is %q, want %q: %w",
				i, header[i], col, core.ErrInvalidArgument)
		}
	}
	return nil
}

func parseRow(rec []string) (core.Transaction, error) {
	if len(rec) != len(core.ColumnNames) {
		return core.Transaction{}, fmt.Errorf("row has %d fields, want %d: %w",
			len(rec), len(core.ColumnNames), core.ErrInvalidArgument)
	}

	date, err := core.ParseDate(rec[1])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := decimal.NewFromString(rec[3])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", rec[3], core.ErrInvalidArgument)
	}

	tx := core.Transaction{
		ID:          rec[0],
		Date:        date,
		Description: rec[2],
		Amount:      amount,
		Currency:    rec[4],
		Merchant:    rec[5],
		Category:    rec[6],
		City:        rec[7],
		Country:     rec[8],
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
