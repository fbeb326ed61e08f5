package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waterline/internal/database"
	"waterline/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	return db
}

func TestSplitSumInvariant(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	txRepo := repository.NewTransactionRepo(db)
	svc := &InstallmentService{Transactions: txRepo}

	base := repository.Transaction{
		Date:     time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		Category: "Shopping",
		Amount:   10000,
		Type:     repository.TypeExpense,
		Tag:      repository.TagWant,
		Note:     "new phone",
	}
	ids, err := svc.Split(ctx, base, 3)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	txs, err := txRepo.All(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	var sum int64
	group := txs[0].GroupID
	require.NotNil(t, group)
	for _, tx := range txs {
		sum += tx.Amount
		require.NotNil(t, tx.GroupID)
		require.Equal(t, *group, *tx.GroupID)
	}
	require.Equal(t, base.Amount, sum)

	// Remainder folds into the first installment.
	require.Equal(t, int64(3334), txs[0].Amount)
	require.Equal(t, int64(3333), txs[1].Amount)
	require.Equal(t, int64(3333), txs[2].Amount)

	// Day 31 rolls back to the last day of shorter months.
	require.Equal(t, "2025-01-31", txs[0].Date.UTC().Format("2006-01-02"))
	require.Equal(t, "2025-02-28", txs[1].Date.UTC().Format("2006-01-02"))
	require.Equal(t, "2025-03-31", txs[2].Date.UTC().Format("2006-01-02"))

	require.Equal(t, "new phone (1/3)", txs[0].Note)
	require.Equal(t, "new phone (2/3)", txs[1].Note)
	require.Equal(t, "new phone (3/3)", txs[2].Note)
}

func TestSplitRejectsSingleInstallment(t *testing.T) {
	t.Parallel()

	svc := &InstallmentService{}
	_, err := svc.Split(context.Background(), repository.Transaction{Amount: 100}, 1)
	require.Error(t, err)
}

func TestSaveEditPropagatesToCohort(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	txRepo := repository.NewTransactionRepo(db)
	svc := &InstallmentService{Transactions: txRepo}

	base := repository.Transaction{
		Date:     time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Category: "Shopping",
		Amount:   9000,
		Type:     repository.TypeExpense,
		Tag:      repository.TagWant,
		Note:     "couch",
	}
	ids, err := svc.Split(ctx, base, 3)
	require.NoError(t, err)

	// Edit the middle installment: reclassify, shift two days, change amount.
	mid, err := txRepo.Get(ctx, ids[1])
	require.NoError(t, err)
	mid.Category = "Utilities"
	mid.Tag = repository.TagNeed
	mid.Date = mid.Date.AddDate(0, 0, 2)
	mid.Amount = 1234
	mid.Note = "couch, adjusted"
	require.NoError(t, svc.SaveEdit(ctx, *mid))

	txs, err := txRepo.All(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	for _, tx := range txs {
		require.Equal(t, "Utilities", tx.Category, "category propagates to the whole cohort")
		require.Equal(t, repository.TagNeed, tx.Tag)
	}
	byID := map[int64]repository.Transaction{}
	for _, tx := range txs {
		byID[tx.ID] = tx
	}
	require.Equal(t, "2025-03-12", byID[ids[0]].Date.UTC().Format("2006-01-02"))
	require.Equal(t, "2025-04-12", byID[ids[1]].Date.UTC().Format("2006-01-02"))
	require.Equal(t, "2025-05-12", byID[ids[2]].Date.UTC().Format("2006-01-02"))

	// Amount and note stay local to the edited member.
	require.Equal(t, int64(1234), byID[ids[1]].Amount)
	require.Equal(t, "couch, adjusted", byID[ids[1]].Note)
	require.Equal(t, int64(3000), byID[ids[0]].Amount)
	require.Equal(t, "couch (1/3)", byID[ids[0]].Note)
	require.Equal(t, int64(3000), byID[ids[2]].Amount)
}

func TestDeleteDoesNotCascadeToCohort(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := newTestDB(t)
	txRepo := repository.NewTransactionRepo(db)
	svc := &InstallmentService{Transactions: txRepo}

	base := repository.Transaction{
		Date:     time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		Category: "Shopping",
		Amount:   600,
		Type:     repository.TypeExpense,
		Tag:      repository.TagWant,
	}
	ids, err := svc.Split(ctx, base, 2)
	require.NoError(t, err)

	require.NoError(t, txRepo.Delete(ctx, ids[0]))
	txs, err := txRepo.All(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, ids[1], txs[0].ID)
}
