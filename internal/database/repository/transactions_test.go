package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

// schema mirrors the initial migration; the repository package cannot import
// internal/database without a cycle in tests.
const testSchema = `
CREATE TABLE transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TIMESTAMP NOT NULL,
    category TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount >= 0),
    type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
    tag TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    group_id TEXT,
    invest_source TEXT,
    from_savings INTEGER NOT NULL DEFAULT 0,
    from_emergency INTEGER NOT NULL DEFAULT 0,
    asset_liquidation INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE budgets (
    category TEXT PRIMARY KEY,
    amount INTEGER NOT NULL CHECK (amount >= 0)
);
CREATE TABLE settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    capital INTEGER NOT NULL DEFAULT 0,
    savings INTEGER NOT NULL DEFAULT 0,
    emergency_fund INTEGER NOT NULL DEFAULT 0,
    emergency_goal INTEGER NOT NULL DEFAULT 0,
    carry_over INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func TestTransactionInsertAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTransactionRepo(newTestDB(t))

	first, err := repo.Insert(ctx, Transaction{
		Date: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), Category: "Rent",
		Amount: 1000, Type: TypeExpense, Tag: TagNeed,
	})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, Transaction{
		Date: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC), Category: "Rent",
		Amount: 1000, Type: TypeExpense, Tag: TagNeed,
	})
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}

func TestTransactionListFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTransactionRepo(newTestDB(t))

	group := "g-7"
	seed := []Transaction{
		{Date: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), Category: CategoryIncome, Amount: 900, Type: TypeIncome, Tag: TagIncome, Note: "salary"},
		{Date: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC), Category: "Rent", Amount: 300, Type: TypeExpense, Tag: TagNeed, Note: "may rent"},
		{Date: time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), Category: "Rent", Amount: 300, Type: TypeExpense, Tag: TagNeed, Note: "june rent", GroupID: &group},
	}
	for _, tx := range seed {
		_, err := repo.Insert(ctx, tx)
		require.NoError(t, err)
	}

	byMonth, err := repo.List(ctx, TransactionFilters{Month: "2025-05"})
	require.NoError(t, err)
	require.Len(t, byMonth, 2)

	byCategory, err := repo.List(ctx, TransactionFilters{Category: "Rent"})
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	byType, err := repo.List(ctx, TransactionFilters{Type: TypeIncome})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	require.Equal(t, "salary", byType[0].Note)

	bySearch, err := repo.List(ctx, TransactionFilters{Search: "june"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	byGroup, err := repo.ByGroup(ctx, group)
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	require.Equal(t, "june rent", byGroup[0].Note)

	// Descending date order for the listing views.
	all, err := repo.List(ctx, TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "june rent", all[0].Note)
}

func TestTransactionUpdateAndNullableColumns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewTransactionRepo(newTestDB(t))

	id, err := repo.Insert(ctx, Transaction{
		Date: time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC), Category: CategoryInvestment,
		Amount: 500, Type: TypeExpense, Tag: TagInvestMonthly, InvestSource: SourceMonthly,
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Nil(t, got.GroupID)
	require.Equal(t, SourceMonthly, got.InvestSource)

	got.InvestSource = SourceCumulative
	got.Tag = TagInvestCumulative
	require.NoError(t, repo.Update(ctx, *got))

	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, SourceCumulative, again.InvestSource)

	missing, err := repo.Get(ctx, 9999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestSettingsMissingRowReadsAsDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSettingsRepo(newTestDB(t))

	b, err := repo.Balances(ctx)
	require.NoError(t, err)
	require.Equal(t, Balances{}, b)

	require.NoError(t, repo.Save(ctx, Balances{Capital: 100, EmergencyGoal: 60000}))
	b, err = repo.Balances(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(100), b.Capital)
	require.Equal(t, int64(60000), b.EmergencyGoal)
	require.False(t, b.UpdatedAt.IsZero())

	// Saving again overwrites the single row.
	require.NoError(t, repo.Save(ctx, Balances{Capital: 250}))
	b, err = repo.Balances(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(250), b.Capital)
	require.Zero(t, b.EmergencyGoal)
}

func TestBudgetMap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewBudgetRepo(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, Budget{Category: "Rent", Amount: 30000}))
	require.NoError(t, repo.Upsert(ctx, Budget{Category: "Food", Amount: 12000}))
	require.NoError(t, repo.Upsert(ctx, Budget{Category: "Food", Amount: 15000}))

	m, err := repo.Map(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"Rent": 30000, "Food": 15000}, m)

	require.NoError(t, repo.Delete(ctx, "Rent"))
	m, err = repo.Map(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"Food": 15000}, m)
}
