package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waterline/internal/database/repository"
	"waterline/internal/planner"
)

func TestExportThenImportRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := newTestDB(t)
	txRepo := repository.NewTransactionRepo(src)
	settingsRepo := repository.NewSettingsRepo(src)
	require.NoError(t, settingsRepo.Save(ctx, repository.Balances{EmergencyGoal: 50000}))

	group := "g-1"
	rows := []repository.Transaction{
		{
			Date: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), Category: repository.CategoryIncome,
			Amount: 40000, Type: repository.TypeIncome, Tag: repository.TagIncome, Note: "salary, feb",
		},
		{
			Date: time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), Category: "Groceries",
			Amount: 5200, Type: repository.TypeExpense, Tag: repository.TagNeed, Note: `weekly "big" shop`,
			GroupID: &group,
		},
		{
			Date: time.Date(2025, time.February, 12, 0, 0, 0, 0, time.UTC), Category: repository.CategoryInvestment,
			Amount: 3000, Type: repository.TypeExpense, Tag: repository.TagInvestCumulative,
			InvestSource: repository.SourceCumulative,
		},
	}
	for _, tx := range rows {
		_, err := txRepo.Insert(ctx, tx)
		require.NoError(t, err)
	}

	exp := &ExportService{Transactions: txRepo, Settings: settingsRepo, Policy: planner.DefaultPolicy()}
	var buf bytes.Buffer
	now := time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, exp.WriteCSV(ctx, &buf, now))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, utf8BOM), "export starts with a UTF-8 BOM")
	require.Contains(t, out, "as_of_month,2025-02")
	require.Contains(t, out, `"weekly ""big"" shop"`)
	require.Contains(t, out, "emergency_goal,50000")

	dst := newTestDB(t)
	imp := &ImportService{
		Transactions: repository.NewTransactionRepo(dst),
		Categories:   repository.NewCategoryRepo(dst),
	}
	res, err := imp.ImportCSV(ctx, &buf)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	require.Equal(t, 3, res.Imported)

	imported, err := imp.Transactions.All(ctx)
	require.NoError(t, err)
	require.Len(t, imported, 3)
	require.Equal(t, `weekly "big" shop`, imported[1].Note)
	require.NotNil(t, imported[1].GroupID)
	require.Equal(t, group, *imported[1].GroupID)
	require.Equal(t, repository.SourceCumulative, imported[2].InvestSource)
}

func TestImportFuzzyMatchesCategories(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db := newTestDB(t)
	catRepo := repository.NewCategoryRepo(db)
	require.NoError(t, catRepo.Upsert(ctx, repository.Category{ID: "c1", Name: "Groceries"}))

	imp := &ImportService{
		Transactions: repository.NewTransactionRepo(db),
		Categories:   catRepo,
	}
	data := strings.Join([]string{
		"id,date,category,amount,type,tag,note,group_id,invest_source,from_savings,from_emergency,asset_liquidation",
		"1,2025-03-02,Grocerys,700,expense,need,typo category,,,false,false,false",
		"2,2025-03-03,Sailing,900,expense,want,brand new category,,,false,false,false",
		"3,not-a-date,Groceries,1,expense,need,bad row,,,false,false,false",
	}, "\n")

	res, err := imp.ImportCSV(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 1)

	txs, err := imp.Transactions.All(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "Groceries", txs[0].Category, "near-miss resolves to the existing category")
	require.Equal(t, "Sailing", txs[1].Category, "distant name becomes a new category")

	cats, err := catRepo.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	require.ElementsMatch(t, []string{"Groceries", "Sailing"}, names)
}
