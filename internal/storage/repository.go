// Package storage is the read-dominant store adapter over the fixed
// transactions schema. The engine only reads; writes happen once, at
// bootstrap, through InsertBatch.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"finsights/internal/core"
	"finsights/internal/query"
)

const selectColumns = "id, date, description, amount, currency, merchant, category, city, country"

// Repository provides bounded retrieval over the transactions table.
// It is safe for concurrent readers; database/sql pools connections.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if necessary) the SQLite database at
// dbPath and applies pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %v: %w", err, core.ErrUnavailable)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Fetch returns at most limit transactions in insertion order. Repeated
// calls over unchanged data return identical prefixes, which the
// aggregator's tie-break relies on.
func (r *Repository) Fetch(ctx context.Context, limit int) ([]core.Transaction, error) {
	if err := core.ValidateLimit(limit); err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM transactions ORDER BY rowid LIMIT ?", limit)
	if err != nil {
		return nil, storeErr("fetch transactions", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// FetchFiltered returns at most spec.Limit transactions matching the
// spec's predicates. Filters use case-insensitive substring semantics
// and are always bound as parameters, never interpolated.
func (r *Repository) FetchFiltered(ctx context.Context, spec query.Spec) ([]core.Transaction, error) {
	if err := core.ValidateLimit(spec.Limit); err != nil {
		return nil, fmt.Errorf("fetch filtered transactions: %w", err)
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + selectColumns + " FROM transactions WHERE 1=1")
	if spec.HasCategory() {
		sb.WriteString(" AND category LIKE '%' || ? || '%' COLLATE NOCASE")
		args = append(args, spec.Category)
	}
	if spec.HasMerchant() {
		sb.WriteString(" AND merchant LIKE '%' || ? || '%' COLLATE NOCASE")
		args = append(args, spec.Merchant)
	}
	sb.WriteString(" ORDER BY rowid LIMIT ?")
	args = append(args, spec.Limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, storeErr("fetch filtered transactions", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Count returns the number of rows in the transactions table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, storeErr("count transactions", err)
	}
	return n, nil
}

// InsertBatch bulk-loads transactions inside a single database
// transaction. It is used by the bootstrap seeder only; the engine
// itself never writes.
func (r *Repository) InsertBatch(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin insert batch", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		"INSERT INTO transactions ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return storeErr("prepare insert", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("insert batch row %s: %w", t.ID, err)
		}
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Date.String(), t.Description, t.Amount.String(),
			t.Currency, t.Merchant, t.Category, t.City, t.Country)
		if err != nil {
			return storeErr("insert transaction "+t.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return storeErr("commit insert batch", err)
	}

	slog.InfoContext(ctx, "Transactions loaded into store", "count", len(txs))
	return nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			dateStr string
			amount  string
		)
		err := rows.Scan(&t.ID, &dateStr, &t.Description, &amount,
			&t.Currency, &t.Merchant, &t.Category, &t.City, &t.Country)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		if t.Date, err = core.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("scan transaction %s: %w", t.ID, err)
		}
		if err := t.Amount.UnmarshalText([]byte(amount)); err != nil {
			return nil, fmt.Errorf("scan transaction %s amount %q: %w", t.ID, amount, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate transaction rows", err)
	}
	return out, nil
}

// storeErr classifies store I/O failures as ErrUnavailable so the API
// layer can answer 503 with the cause preserved. Context deadline and
// cancellation fall under the same kind: a read that exceeded its time
// budget is a store that was not available in time.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrUnavailable)
}
