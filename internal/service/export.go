package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"waterline/internal/database/repository"
	"waterline/internal/planner"
)

// utf8BOM keeps spreadsheet apps from misreading the encoding.
const utf8BOM = "\xef\xbb\xbf"

// csvHeader is the denormalized one-row-per-transaction column set. Import
// recognizes it to skip the summary preamble.
var csvHeader = []string{
	"id", "date", "category", "amount", "type", "tag", "note",
	"group_id", "invest_source", "from_savings", "from_emergency", "asset_liquidation",
}

// ExportService dumps the full transaction history plus the current
// snapshot values as CSV.
type ExportService struct {
	Transactions *repository.TransactionRepo
	Settings     *repository.SettingsRepo
	Policy       planner.Policy
}

func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, now time.Time) error {
	txs, err := s.Transactions.All(ctx)
	if err != nil {
		return fmt.Errorf("export: load transactions: %w", err)
	}
	balances, err := s.Settings.Balances(ctx)
	if err != nil {
		return fmt.Errorf("export: load balances: %w", err)
	}
	snap := planner.ComputeSnapshots(txs, balances, now, s.Policy).Latest()

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)

	summary := [][]string{
		{"exported_at", now.Format("2006-01-02")},
		{"as_of_month", snap.Month},
		{"capital", formatAmount(snap.Capital)},
		{"savings", formatAmount(snap.Savings)},
		{"emergency_fund", formatAmount(snap.EmergencyFund)},
		{"emergency_goal", formatAmount(balances.EmergencyGoal)},
		{"unfilled_deficit", formatAmount(snap.UnfilledDeficit)},
		{"next_month_budget", formatAmount(snap.SurplusForNextMonth)},
		{},
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range txs {
		group := ""
		if t.GroupID != nil {
			group = *t.GroupID
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Date.Format("2006-01-02"),
			t.Category,
			formatAmount(t.Amount),
			string(t.Type),
			string(t.Tag),
			t.Note,
			group,
			string(t.InvestSource),
			strconv.FormatBool(t.FromSavings),
			strconv.FormatBool(t.FromEmergency),
			strconv.FormatBool(t.AssetLiquidation),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v int64) string { return strconv.FormatInt(v, 10) }
