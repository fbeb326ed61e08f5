package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"waterline/internal/database/repository"
)

// ImportService reads a waterline CSV export back into the store. Unknown
// categories are fuzzy-matched against the existing set before a new one is
// created.
type ImportService struct {
	Transactions *repository.TransactionRepo
	Categories   *repository.CategoryRepo
}

type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	cats, err := s.Categories.List(ctx)
	if err != nil {
		return res, fmt.Errorf("import: load categories: %w", err)
	}

	inBody := false
	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if !inBody {
			// Everything before the column header is summary preamble.
			if len(rec) > 0 && strings.TrimPrefix(rec[0], utf8BOM) == "id" {
				inBody = true
			}
			continue
		}
		if len(rec) < len(csvHeader) {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected %d columns", line, len(csvHeader)))
			continue
		}

		t, err := s.parseRow(ctx, rec, &cats)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if _, err := s.Transactions.Insert(ctx, t); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}
	return res, nil
}

func (s *ImportService) parseRow(ctx context.Context, rec []string, cats *[]repository.Category) (repository.Transaction, error) {
	var t repository.Transaction

	date, err := time.Parse("2006-01-02", strings.TrimSpace(rec[1]))
	if err != nil {
		return t, fmt.Errorf("date: %w", err)
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
	if err != nil {
		return t, fmt.Errorf("amount: %w", err)
	}
	if amount < 0 {
		return t, fmt.Errorf("amount: negative value %d", amount)
	}

	category, err := s.resolveCategory(ctx, rec[2], cats)
	if err != nil {
		return t, err
	}

	t.Date = date
	t.Category = category
	t.Amount = amount
	t.Type = repository.TxType(strings.TrimSpace(rec[4]))
	t.Tag = repository.Tag(strings.TrimSpace(rec[5]))
	t.Note = rec[6]
	if g := strings.TrimSpace(rec[7]); g != "" {
		t.GroupID = &g
	}
	t.InvestSource = repository.InvestSource(strings.TrimSpace(rec[8]))
	t.FromSavings = parseBool(rec[9])
	t.FromEmergency = parseBool(rec[10])
	t.AssetLiquidation = parseBool(rec[11])

	switch t.Type {
	case repository.TypeIncome, repository.TypeExpense:
	default:
		return t, fmt.Errorf("type: unknown value %q", rec[4])
	}
	return t, nil
}

func (s *ImportService) resolveCategory(ctx context.Context, raw string, cats *[]repository.Category) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("category: empty")
	}
	if name == repository.CategoryIncome || name == repository.CategoryInvestment {
		return name, nil
	}
	if match, ok := MatchCategory(name, *cats); ok {
		return match, nil
	}
	c := repository.Category{
		ID:        uuid.NewString(),
		Name:      name,
		SortOrder: len(*cats) + 1,
	}
	if err := s.Categories.Upsert(ctx, c); err != nil {
		return "", fmt.Errorf("category: create %q: %w", name, err)
	}
	*cats = append(*cats, c)
	return name, nil
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}
