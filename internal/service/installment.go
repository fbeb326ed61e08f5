package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"waterline/internal/database/repository"
)

// InstallmentService creates installment cohorts and keeps them consistent
// when one member is edited.
type InstallmentService struct {
	Transactions *repository.TransactionRepo
}

// Split stores base as n installments over n consecutive months. The first
// installment absorbs the division remainder so the cohort always sums to
// base.Amount exactly. Returns the assigned ids in date order.
func (s *InstallmentService) Split(ctx context.Context, base repository.Transaction, n int) ([]int64, error) {
	if n < 2 {
		return nil, fmt.Errorf("installments: count must be at least 2, got %d", n)
	}
	total := base.Amount
	per := total / int64(n)
	remainder := total - per*int64(n)
	groupID := uuid.NewString()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		t := base
		t.GroupID = &groupID
		t.Date = addMonthsClamped(base.Date, i)
		t.Amount = per
		if i == 0 {
			t.Amount += remainder
		}
		t.Note = fmt.Sprintf("%s (%d/%d)", base.Note, i+1, n)
		id, err := s.Transactions.Insert(ctx, t)
		if err != nil {
			return ids, fmt.Errorf("installments: insert %d/%d: %w", i+1, n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SaveEdit updates one transaction and, when it belongs to a cohort,
// propagates the classification changes to every sibling:
//   - a date change shifts all siblings by the same day offset
//   - category, tag, invest source and pool flags are copied to all siblings
//   - amount and note stay local to the edited row
func (s *InstallmentService) SaveEdit(ctx context.Context, updated repository.Transaction) error {
	old, err := s.Transactions.Get(ctx, updated.ID)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("installments: transaction %d not found", updated.ID)
	}
	updated.GroupID = old.GroupID
	if err := s.Transactions.Update(ctx, updated); err != nil {
		return err
	}
	if old.GroupID == nil {
		return nil
	}

	dayDelta := daysBetween(old.Date, updated.Date)
	cohort, err := s.Transactions.ByGroup(ctx, *old.GroupID)
	if err != nil {
		return err
	}
	for _, sib := range cohort {
		if sib.ID == updated.ID {
			continue
		}
		sib.Date = sib.Date.AddDate(0, 0, dayDelta)
		sib.Category = updated.Category
		sib.Type = updated.Type
		sib.Tag = updated.Tag
		sib.InvestSource = updated.InvestSource
		sib.FromSavings = updated.FromSavings
		sib.FromEmergency = updated.FromEmergency
		sib.AssetLiquidation = updated.AssetLiquidation
		if err := s.Transactions.Update(ctx, sib); err != nil {
			return err
		}
	}
	return nil
}

// addMonthsClamped keeps the day-of-month across months, clamping to the
// last day when the target month is shorter (rolls back, never forward).
func addMonthsClamped(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	target := first.AddDate(0, months, 0)
	day := d.Day()
	if last := daysInMonth(target); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, d.Location())
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
