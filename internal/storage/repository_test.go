package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finsights/internal/core"
	"finsights/internal/query"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedRows(t *testing.T, repo *Repository, txs []core.Transaction) {
	t.Helper()
	require.NoError(t, repo.InsertBatch(context.Background(), txs))
}

func row(id, category, merchant string, amount float64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        core.NewDate(2025, 2, 14),
		Description: merchant + " London",
		Amount:      decimal.NewFromFloat(amount),
		Currency:    "GBP",
		Merchant:    merchant,
		Category:    category,
		City:        "London",
		Country:     "United Kingdom",
	}
}

func TestRepository_FetchOrderAndPrefix(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo, []core.Transaction{
		row("t1", "Food", "Subway", -8.40),
		row("t2", "Income", "Salary ACME Ltd", 2500),
		row("t3", "Transport", "Uber", -14.20),
		row("t4", "Food", "Starbucks", -4.90),
	})

	ctx := context.Background()

	small, err := repo.Fetch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, small, 2)

	large, err := repo.Fetch(ctx, 4)
	require.NoError(t, err)
	require.Len(t, large, 4)

	// fetch(L1) must be a prefix of fetch(L2) for L1 < L2.
	require.Equal(t, large[:2], small)
	require.Equal(t, []string{"t1", "t2", "t3", "t4"},
		[]string{large[0].ID, large[1].ID, large[2].ID, large[3].ID})
}

func TestRepository_FetchLimitValidation(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Fetch(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = repo.Fetch(context.Background(), 501)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestRepository_FetchFiltered(t *testing.T) {
	repo := newTestRepo(t)
	seedRows(t, repo, []core.Transaction{
		row("t1", "Food", "Subway", -8.40),
		row("t2", "Groceries", "Tesco", -52.10),
		row("t3", "Food", "Pizza Express", -23.00),
		row("t4", "Transport", "Uber", -14.20),
	})
	ctx := context.Background()

	t.Run("category substring is case-insensitive", func(t *testing.T) {
		lower, err := repo.FetchFiltered(ctx, mustSpec(t, "food", "", 20))
		require.NoError(t, err)
		upper, err := repo.FetchFiltered(ctx, mustSpec(t, "Food", "", 20))
		require.NoError(t, err)
		require.Equal(t, upper, lower)
		require.Len(t, lower, 2)
	})

	t.Run("merchant substring match", func(t *testing.T) {
		got, err := repo.FetchFiltered(ctx, mustSpec(t, "", "pizza", 20))
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "t3", got[0].ID)
	})

	t.Run("absent filters impose no constraint", func(t *testing.T) {
		got, err := repo.FetchFiltered(ctx, mustSpec(t, "", "", 20))
		require.NoError(t, err)
		require.Len(t, got, 4)
	})

	t.Run("filter text is bound, not interpolated", func(t *testing.T) {
		got, err := repo.FetchFiltered(ctx, mustSpec(t, "' OR '1'='1", "", 20))
		require.NoError(t, err)
		require.Empty(t, got)

		got, err = repo.FetchFiltered(ctx, mustSpec(t, "", "'; DROP TABLE transactions; --", 20))
		require.NoError(t, err)
		require.Empty(t, got)

		// Table must still be intact.
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 4, n)
	})
}

func TestRepository_RoundTripValues(t *testing.T) {
	repo := newTestRepo(t)
	want := row("t1", "Utilities", "Octopus Energy", -61.37)
	seedRows(t, repo, []core.Transaction{want})

	got, err := repo.Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.Equal(t, want.ID, got[0].ID)
	require.Equal(t, want.Date.String(), got[0].Date.String())
	require.True(t, want.Amount.Equal(got[0].Amount), "amount %s != %s", want.Amount, got[0].Amount)
	require.Equal(t, want.Merchant, got[0].Merchant)
}

func TestRepository_InsertBatchRejectsBadRows(t *testing.T) {
	repo := newTestRepo(t)

	bad := row("t1", "NotACategory", "Somewhere", -1)
	err := repo.InsertBatch(context.Background(), []core.Transaction{bad})
	require.ErrorIs(t, err, core.ErrInvalidArgument)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func mustSpec(t *testing.T, category, merchant string, limit int) query.Spec {
	t.Helper()
	spec, err := query.Build(category, merchant, limit)
	require.NoError(t, err)
	return spec
}
