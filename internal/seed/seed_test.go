package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finsights/internal/core"
	"finsights/internal/generate"
)

type fakeStore struct {
	count    int64
	inserted []core.Transaction
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) { return f.count, nil }

func (f *fakeStore) InsertBatch(ctx context.Context, txs []core.Transaction) error {
	f.inserted = append(f.inserted, txs...)
	return nil
}

func writeDataset(t *testing.T, rows int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	txs := generate.New(42, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)).Dataset(rows)
	if err := generate.WriteCSV(path, txs); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeDataset(t, 25)

	txs, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(txs) != 25 {
		t.Fatalf("got %d rows, want 25", len(txs))
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			t.Fatalf("loaded transaction invalid: %v", err)
		}
	}
}

func TestLoadCSV_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing column", "id,date,description,amount,currency,merchant,category,city"},
		{"wrong column name", "id,date,description,value,currency,merchant,category,city,country"},
		{"wrong order", "date,id,description,amount,currency,merchant,category,city,country"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.csv")
			content := tt.header + "\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("write file: %v", err)
			}

			_, err := LoadCSV(path)
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Fatalf("LoadCSV = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestLoadCSV_BadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "id,date,description,amount,currency,merchant,category,city,country\n" +
		"t1,2025-01-15,Tesco London,not-a-number,GBP,Tesco,Groceries,London,United Kingdom\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := LoadCSV(path)
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("LoadCSV = %v, want ErrInvalidArgument", err)
	}
}

func TestRun(t *testing.T) {
	t.Run("loads into empty store", func(t *testing.T) {
		path := writeDataset(t, 10)
		store := &fakeStore{}

		if err := Run(context.Background(), store, path); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(store.inserted) != 10 {
			t.Fatalf("inserted %d rows, want 10", len(store.inserted))
		}
	})

	t.Run("skips non-empty store", func(t *testing.T) {
		path := writeDataset(t, 10)
		store := &fakeStore{count: 1000}

		if err := Run(context.Background(), store, path); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(store.inserted) != 0 {
			t.Fatalf("inserted %d rows into a seeded store, want 0", len(store.inserted))
		}
	})

	t.Run("missing dataset fails", func(t *testing.T) {
		store := &fakeStore{}
		err := Run(context.Background(), store, filepath.Join(t.TempDir(), "absent.csv"))
		if err == nil {
			t.Fatal("Run should fail on a missing dataset")
		}
	})
}
