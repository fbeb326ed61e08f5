package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"waterline/internal/database/repository"
	"waterline/internal/planner"
)

// styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (a *App) money(v int64) string {
	if v < 0 {
		return fmt.Sprintf("-%s%d", a.currency, -v)
	}
	return fmt.Sprintf("%s%d", a.currency, v)
}

func monthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func (a *App) renderDashboard() string {
	snap := a.plan.Month(a.month)
	title := titleStyle.Render("Waterline - " + monthLabel(a.month))

	var b strings.Builder
	b.WriteString(title + "\n\n")

	b.WriteString(fmt.Sprintf("Income  %12s    Expense %12s    Net %12s\n",
		a.money(snap.Income), a.money(snap.Expense), a.money(snap.NetIncome)))
	b.WriteString(fmt.Sprintf("Need    %12s    Want    %12s\n", a.money(snap.Need), a.money(snap.Want)))

	if snap.DeficitIncurred > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Deficit this month: %s (covered from capital)", a.money(snap.DeficitIncurred))) + "\n")
	}
	if snap.DeficitRepaid > 0 {
		b.WriteString(goodStyle.Render(fmt.Sprintf("Deficit repaid: %s", a.money(snap.DeficitRepaid))) + "\n")
	}
	if snap.UnfilledDeficit > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Outstanding deficit: %s", a.money(snap.UnfilledDeficit))) + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Allocation") + "\n")
	b.WriteString(fmt.Sprintf("Monthly budget     %12s   remaining %12s\n", a.money(snap.MonthlyBudget), a.money(snap.MonthlyBudgetRemaining)))
	b.WriteString(fmt.Sprintf("Invested           %12s   (monthly %s, cumulative %s)\n",
		a.money(snap.Invested()), a.money(snap.InvestedFromMonthly), a.money(snap.InvestedFromCumulative)))
	if snap.EmergencyDiverted > 0 {
		b.WriteString(fmt.Sprintf("Diverted to emergency fund %s\n", a.money(snap.EmergencyDiverted)))
	}
	if snap.CapitalToEmergency > 0 {
		b.WriteString(fmt.Sprintf("Capital lent to emergency fund %s\n", a.money(snap.CapitalToEmergency)))
	}
	b.WriteString(fmt.Sprintf("Savings addon      %12s   next month's budget %12s\n",
		a.money(snap.SavingsAddon), a.money(snap.SurplusForNextMonth)))

	b.WriteString("\n" + titleStyle.Render("Pools") + "\n")
	b.WriteString(fmt.Sprintf("Capital            %12s\n", a.money(snap.Capital)))
	b.WriteString(fmt.Sprintf("Savings            %12s\n", a.money(snap.Savings)))
	pct := planner.GoalProgress(snap.EmergencyFund, a.balances.EmergencyGoal)
	b.WriteString(fmt.Sprintf("Emergency fund     %12s   %s %.0f%% of %s\n",
		a.money(snap.EmergencyFund), progressBar(pct, 20), pct, a.money(a.balances.EmergencyGoal)))

	if len(snap.ByCategory) > 0 {
		b.WriteString("\n" + titleStyle.Render("Spending by category") + "\n")
		type pair struct {
			name  string
			total int64
		}
		pairs := make([]pair, 0, len(snap.ByCategory))
		for k, v := range snap.ByCategory {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].total != pairs[j].total {
				return pairs[i].total > pairs[j].total
			}
			return pairs[i].name < pairs[j].name
		})
		for _, p := range pairs {
			line := fmt.Sprintf("  %-20s %12s", p.name, a.money(p.total))
			if budget, ok := a.budgets[p.name]; ok && budget > 0 {
				line += dimStyle.Render(fmt.Sprintf("  / %s", a.money(budget)))
				if p.total > budget {
					line += "  " + warnStyle.Render("over")
				}
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render(footerHelp(keys.PrevMonth, keys.NextMonth, keys.Add, keys.History, keys.Settings, keys.Export, keys.Import, keys.Quit)))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) renderHistory() string {
	title := titleStyle.Render("Transactions - " + monthLabel(a.month))
	var b strings.Builder
	b.WriteString(title + "\n")
	if len(a.transactions) == 0 {
		b.WriteString(dimStyle.Render("  (no transactions this month)") + "\n")
	}
	for i, t := range a.transactions {
		marker := " "
		if i == a.txCursor {
			marker = "▶"
		}
		amount := a.money(t.Amount)
		if t.Type == repository.TypeExpense {
			amount = "-" + amount
		}
		detail := string(t.Tag)
		switch {
		case t.FromSavings:
			detail += ", from savings"
		case t.FromEmergency:
			detail += ", from emergency"
		case t.AssetLiquidation:
			detail = "asset liquidation"
		}
		if t.GroupID != nil {
			detail += ", installment"
		}
		b.WriteString(fmt.Sprintf("%s %s  %-16s %12s  %s", marker, t.Date.In(a.tz).Format(a.dateFormat), t.Category, amount, dimStyle.Render(detail)))
		if t.Note != "" {
			b.WriteString("  " + t.Note)
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(footerHelp(keys.PrevMonth, keys.NextMonth, keys.Add, keys.Edit, keys.Delete, keys.Dashboard, keys.Settings, keys.Quit)))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) renderSettings() string {
	title := titleStyle.Render("Settings")
	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString("Starting balances\n")
	for i, label := range balanceFields {
		marker := " "
		if i == a.settingsCursor {
			marker = "▶"
		}
		b.WriteString(fmt.Sprintf("%s %-20s %12s\n", marker, label, a.money(a.balanceValue(i))))
	}

	b.WriteString("\nCategories\n")
	if len(a.categories) == 0 {
		b.WriteString(dimStyle.Render("  (no categories yet)") + "\n")
	}
	for i, c := range a.categories {
		marker := " "
		if len(balanceFields)+i == a.settingsCursor {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %s", marker, c.Name)
		if budget, ok := a.budgets[c.Name]; ok && budget > 0 {
			line += dimStyle.Render(fmt.Sprintf("  (budget %s)", a.money(budget)))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n[enter] Edit  " + footerHelp(keys.New, keys.Budget, keys.Delete) + "\n")
	b.WriteString(footerHelp(keys.Export, keys.Import, keys.Reset) + "\n")
	b.WriteString(dimStyle.Render(footerHelp(keys.Dashboard, keys.History, keys.Quit)))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmReset:
		return titleStyle.Render("Reset database?") + "\nThis will delete all transactions, budgets, balances and categories.\n[y] Yes  [n] No"
	case modalConfirmDelete:
		return titleStyle.Render("Delete transaction?") + "\nInstallment siblings are kept.\n[y] Yes  [n] No"
	case modalNewCategory:
		return titleStyle.Render("New category") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalRenameCategory:
		return titleStyle.Render("Rename category") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalEditBudget:
		return titleStyle.Render("Monthly budget (0 clears)") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalEditBalance:
		label := balanceFields[a.editingBalance]
		return titleStyle.Render("Set "+label) + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalExportPath:
		return titleStyle.Render("Export CSV to") + fmt.Sprintf("\n%s\n[enter] Export  [esc] Cancel", a.inputBuffer)
	case modalImportPath:
		out := titleStyle.Render("Import CSV from") + fmt.Sprintf("\n%s\n[enter] Import  [esc] Cancel", a.inputBuffer)
		if a.lastImport != nil {
			out += fmt.Sprintf("\nLast import: %d imported, %d skipped, %d errors", a.lastImport.Imported, a.lastImport.Skipped, len(a.lastImport.Errors))
			if len(a.lastImport.Errors) > 0 {
				out += "\nFirst error: " + a.lastImport.Errors[0].Error()
			}
		}
		return out
	default:
		return ""
	}
}
