package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"waterline/internal/calc"
	"waterline/internal/config"
	"waterline/internal/database/repository"
	"waterline/internal/planner"
	"waterline/internal/prefs"
	"waterline/internal/service"
)

// App ties together views.
type App struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services
	tz       *time.Location
	policy   planner.Policy

	state appState
	modal modalState

	transactions []repository.Transaction // selected month, newest first
	categories   []repository.Category
	budgets      map[string]int64
	balances     repository.Balances
	plan         planner.Result
	month        string // YYYY-MM

	txCursor       int
	settingsCursor int

	form *txForm

	inputBuffer       string
	editingCategoryID string
	editingBalance    int
	pendingDeleteID   int64
	lastImport        *service.ImportResult

	status     string
	currency   string
	dateFormat string
}

type Repos struct {
	Transactions *repository.TransactionRepo
	Categories   *repository.CategoryRepo
	Budgets      *repository.BudgetRepo
	Settings     *repository.SettingsRepo
}

type Services struct {
	Installments *service.InstallmentService
	Export       *service.ExportService
	Import       *service.ImportService
	Maintenance  *service.MaintenanceService
}

type appState string

const (
	viewDashboard appState = "dashboard"
	viewHistory   appState = "history"
	viewForm      appState = "form"
	viewSettings  appState = "settings"
)

type modalState string

const (
	modalNone           modalState = ""
	modalConfirmReset   modalState = "confirmReset"
	modalConfirmDelete  modalState = "confirmDelete"
	modalNewCategory    modalState = "newCategory"
	modalRenameCategory modalState = "renameCategory"
	modalEditBudget     modalState = "editBudget"
	modalEditBalance    modalState = "editBalance"
	modalExportPath     modalState = "exportPath"
	modalImportPath     modalState = "importPath"
)

// balanceFields are the settings rows ahead of the category list. Order
// matches renderSettings and the editBalance modal.
var balanceFields = []string{"Capital", "Savings", "Emergency fund", "Emergency goal", "Carry-over budget"}

func New(ctx context.Context, cfg config.Config, repos Repos, services Services, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		repos:      repos,
		services:   services,
		tz:         tz,
		policy:     planner.Policy{CapitalToEmergency: cfg.Planner.CapitalToEmergency},
		month:      time.Now().In(tz).Format("2006-01"),
		currency:   cfg.UI.CurrencySymbol,
		dateFormat: cfg.UI.DateFormat,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadTransactions(), a.loadCategories(), a.loadBudgets(), a.loadPlan())
}

func (a *App) loadTransactions() tea.Cmd {
	month := a.month
	return func() tea.Msg {
		list, err := a.repos.Transactions.List(a.ctx, repository.TransactionFilters{Month: month})
		if err != nil {
			return errMsg{err}
		}
		return transactionsMsg(list)
	}
}

func (a *App) loadCategories() tea.Cmd {
	return func() tea.Msg {
		cats, err := a.repos.Categories.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return categoryListMsg(cats)
	}
}

func (a *App) loadBudgets() tea.Cmd {
	return func() tea.Msg {
		m, err := a.repos.Budgets.Map(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return budgetsMsg(m)
	}
}

// loadPlan reruns the allocation recurrence over the full history. The
// snapshots are derived state, so every mutation simply triggers a reload.
func (a *App) loadPlan() tea.Cmd {
	return func() tea.Msg {
		txs, err := a.repos.Transactions.All(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		balances, err := a.repos.Settings.Balances(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		now := time.Now().In(a.tz)
		return planMsg{
			balances: balances,
			result:   planner.ComputeSnapshots(txs, balances, now, a.policy),
		}
	}
}

func (a *App) refreshAll() tea.Cmd {
	return tea.Batch(a.loadTransactions(), a.loadCategories(), a.loadBudgets(), a.loadPlan())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewForm && a.form != nil {
			return a.handleFormKey(m)
		}
		if a.state == viewSettings {
			return a.handleSettingsKey(m)
		}
		return a.handleKey(m)
	case transactionsMsg:
		a.transactions = []repository.Transaction(m)
		if a.txCursor >= len(a.transactions) {
			a.txCursor = 0
		}
	case categoryListMsg:
		a.categories = []repository.Category(m)
	case budgetsMsg:
		a.budgets = map[string]int64(m)
	case planMsg:
		a.balances = m.balances
		a.plan = m.result
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case importDoneMsg:
		a.lastImport = &m.Result
		summary := fmt.Sprintf("imported %d, skipped %d", m.Result.Imported, m.Result.Skipped)
		if len(m.Result.Errors) > 0 {
			summary += fmt.Sprintf(", errors %d", len(m.Result.Errors))
		}
		a.status = summary
		return a, a.refreshAll()
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, keys.Quit):
		return a, tea.Quit
	case key.Matches(m, keys.Dashboard):
		a.state = viewDashboard
		a.status = ""
	case key.Matches(m, keys.History):
		a.state = viewHistory
		a.status = ""
	case key.Matches(m, keys.Settings):
		a.state = viewSettings
		a.status = ""
	case key.Matches(m, keys.PrevMonth):
		return a, a.shiftMonth(-1)
	case key.Matches(m, keys.NextMonth):
		return a, a.shiftMonth(1)
	case key.Matches(m, keys.Add):
		a.form = newTxForm()
		a.state = viewForm
		a.status = ""
	case key.Matches(m, keys.Edit):
		if a.state == viewHistory && len(a.transactions) > 0 {
			a.form = editTxForm(a.transactions[a.txCursor])
			a.state = viewForm
			a.status = ""
		}
	case key.Matches(m, keys.Delete):
		if a.state == viewHistory && len(a.transactions) > 0 {
			a.pendingDeleteID = a.transactions[a.txCursor].ID
			a.modal = modalConfirmDelete
		}
	case key.Matches(m, keys.Up):
		if a.state == viewHistory && a.txCursor > 0 {
			a.txCursor--
		}
	case key.Matches(m, keys.Down):
		if a.state == viewHistory && a.txCursor < len(a.transactions)-1 {
			a.txCursor++
		}
	case key.Matches(m, keys.Export):
		a.modal = modalExportPath
		a.inputBuffer = defaultExportPath(a.month)
	case key.Matches(m, keys.Import):
		a.modal = modalImportPath
		a.inputBuffer = ""
	}
	return a, nil
}

func (a *App) shiftMonth(delta int) tea.Cmd {
	cur, err := time.Parse("2006-01", a.month)
	if err != nil {
		cur = time.Now().In(a.tz)
	}
	a.month = cur.AddDate(0, delta, 0).Format("2006-01")
	a.txCursor = 0
	return a.loadTransactions()
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := len(balanceFields) + len(a.categories)
	switch {
	case key.Matches(m, keys.Quit):
		return a, tea.Quit
	case m.String() == "esc", key.Matches(m, keys.Dashboard):
		a.state = viewDashboard
		a.status = ""
	case key.Matches(m, keys.History):
		a.state = viewHistory
	case key.Matches(m, keys.Up):
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case key.Matches(m, keys.Down):
		if a.settingsCursor < rows-1 {
			a.settingsCursor++
		}
	case m.String() == "enter":
		if a.settingsCursor < len(balanceFields) {
			a.editingBalance = a.settingsCursor
			a.inputBuffer = fmt.Sprintf("%d", a.balanceValue(a.editingBalance))
			a.modal = modalEditBalance
			return a, nil
		}
		cat := a.categoryUnderCursor()
		if cat == nil {
			return a, nil
		}
		a.editingCategoryID = cat.ID
		a.inputBuffer = cat.Name
		a.modal = modalRenameCategory
	case key.Matches(m, keys.New):
		a.modal = modalNewCategory
		a.inputBuffer = ""
	case key.Matches(m, keys.Budget):
		cat := a.categoryUnderCursor()
		if cat == nil {
			a.status = "select a category to budget"
			return a, nil
		}
		a.editingCategoryID = cat.ID
		a.inputBuffer = fmt.Sprintf("%d", a.budgets[cat.Name])
		a.modal = modalEditBudget
	case key.Matches(m, keys.Delete):
		cat := a.categoryUnderCursor()
		if cat == nil {
			return a, nil
		}
		return a, a.deleteCategoryCmd(*cat)
	case key.Matches(m, keys.Reset):
		a.modal = modalConfirmReset
	case key.Matches(m, keys.Export):
		a.modal = modalExportPath
		a.inputBuffer = defaultExportPath(a.month)
	case key.Matches(m, keys.Import):
		a.modal = modalImportPath
		a.inputBuffer = ""
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmReset:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			return a, a.resetCmd()
		case "n", "N", "esc":
			a.modal = modalNone
		}
		return a, nil
	case modalConfirmDelete:
		switch m.String() {
		case "y", "Y":
			a.modal = modalNone
			id := a.pendingDeleteID
			a.pendingDeleteID = 0
			return a, a.deleteTransactionCmd(id)
		case "n", "N", "esc":
			a.modal = modalNone
			a.pendingDeleteID = 0
		}
		return a, nil
	}

	// the remaining modals share a single-line input buffer
	switch m.Type {
	case tea.KeyEsc:
		a.modal = modalNone
		a.inputBuffer = ""
	case tea.KeyEnter:
		text := strings.TrimSpace(a.inputBuffer)
		mode := a.modal
		a.modal = modalNone
		a.inputBuffer = ""
		return a.submitModal(mode, text)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.inputBuffer) > 0 {
			a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
		}
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	return a, nil
}

func (a *App) submitModal(mode modalState, text string) (tea.Model, tea.Cmd) {
	switch mode {
	case modalNewCategory:
		if text == "" {
			a.status = "enter a name"
			return a, nil
		}
		return a, a.createCategoryCmd(text)
	case modalRenameCategory:
		cat := a.categoryByID(a.editingCategoryID)
		if cat == nil || text == "" {
			return a, nil
		}
		return a, a.renameCategoryCmd(*cat, text)
	case modalEditBudget:
		cat := a.categoryByID(a.editingCategoryID)
		if cat == nil {
			return a, nil
		}
		amount, err := calc.EvalAmount(text)
		if err != nil || amount < 0 {
			a.status = "budget must be a non-negative amount"
			return a, nil
		}
		return a, a.setBudgetCmd(cat.Name, amount)
	case modalEditBalance:
		amount, err := calc.EvalAmount(text)
		if err != nil {
			a.status = "balance: " + err.Error()
			return a, nil
		}
		b := a.balances
		switch a.editingBalance {
		case 0:
			b.Capital = amount
		case 1:
			b.Savings = amount
		case 2:
			b.EmergencyFund = amount
		case 3:
			b.EmergencyGoal = amount
		case 4:
			b.CarryOver = amount
		}
		return a, a.saveBalancesCmd(b)
	case modalExportPath:
		if text == "" {
			a.status = "enter a file path"
			return a, nil
		}
		return a, a.exportCmd(text)
	case modalImportPath:
		if text == "" {
			a.status = "enter a CSV path"
			return a, nil
		}
		return a, a.importCmd(text)
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewHistory:
		body = a.renderHistory()
	case viewForm:
		body = a.renderForm()
	case viewSettings:
		body = a.renderSettings()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// commands

func (a *App) saveTransactionCmd(tx repository.Transaction, installments int) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.ensureCategory(tx.Category); err != nil {
				return errMsg{err}
			}
			switch {
			case tx.ID != 0:
				if err := a.services.Installments.SaveEdit(a.ctx, tx); err != nil {
					return errMsg{err}
				}
				return statusMsg("transaction updated")
			case installments >= 2:
				ids, err := a.services.Installments.Split(a.ctx, tx, installments)
				if err != nil {
					return errMsg{err}
				}
				return statusMsg(fmt.Sprintf("saved as %d installments", len(ids)))
			default:
				if _, err := a.repos.Transactions.Insert(a.ctx, tx); err != nil {
					return errMsg{err}
				}
				return statusMsg("transaction added")
			}
		},
		a.refreshAll(),
	)
}

// ensureCategory creates the category row when the form typed a name that
// matched nothing. Reserved names never get a row.
func (a *App) ensureCategory(name string) error {
	if name == repository.CategoryIncome || name == repository.CategoryInvestment {
		return nil
	}
	existing, err := a.repos.Categories.ByName(a.ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	c := repository.Category{ID: uuid.NewString(), Name: name, SortOrder: len(a.categories) + 1}
	return a.repos.Categories.Upsert(a.ctx, c)
}

func (a *App) deleteTransactionCmd(id int64) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.repos.Transactions.Delete(a.ctx, id); err != nil {
				return errMsg{err}
			}
			return statusMsg("transaction deleted")
		},
		a.refreshAll(),
	)
}

func (a *App) createCategoryCmd(name string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			c := repository.Category{ID: uuid.NewString(), Name: strings.TrimSpace(name), SortOrder: len(a.categories) + 1}
			if err := a.repos.Categories.Upsert(a.ctx, c); err != nil {
				return errMsg{err}
			}
			a.mirrorCategories()
			return statusMsg("category added")
		},
		a.loadCategories(),
	)
}

func (a *App) renameCategoryCmd(cat repository.Category, name string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			c := cat
			c.Name = strings.TrimSpace(name)
			if err := a.repos.Categories.Upsert(a.ctx, c); err != nil {
				return errMsg{err}
			}
			a.mirrorCategories()
			return statusMsg("category renamed")
		},
		a.loadCategories(),
		a.loadTransactions(),
	)
}

func (a *App) deleteCategoryCmd(cat repository.Category) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.repos.Categories.Delete(a.ctx, cat.ID); err != nil {
				return errMsg{err}
			}
			a.mirrorCategories()
			return statusMsg("category removed")
		},
		a.loadCategories(),
	)
}

// mirrorCategories refreshes the prefs blob after any category mutation.
// Best effort, the database stays authoritative.
func (a *App) mirrorCategories() {
	cats, err := a.repos.Categories.List(a.ctx)
	if err != nil {
		return
	}
	_ = prefs.SaveCategories(cats)
}

func (a *App) setBudgetCmd(category string, amount int64) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if amount == 0 {
				if err := a.repos.Budgets.Delete(a.ctx, category); err != nil {
					return errMsg{err}
				}
				return statusMsg("budget cleared")
			}
			if err := a.repos.Budgets.Upsert(a.ctx, repository.Budget{Category: category, Amount: amount}); err != nil {
				return errMsg{err}
			}
			return statusMsg("budget saved")
		},
		a.loadBudgets(),
	)
}

func (a *App) saveBalancesCmd(b repository.Balances) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.repos.Settings.Save(a.ctx, b); err != nil {
				return errMsg{err}
			}
			_ = prefs.SaveBalances(b)
			return statusMsg("balances saved")
		},
		a.loadPlan(),
	)
}

func (a *App) exportCmd(path string) tea.Cmd {
	abs := path
	if !filepath.IsAbs(path) {
		if p, err := filepath.Abs(path); err == nil {
			abs = p
		}
	}
	return func() tea.Msg {
		f, err := os.Create(abs)
		if err != nil {
			return errMsg{fmt.Errorf("create %s: %w", abs, err)}
		}
		defer f.Close()
		if err := a.services.Export.WriteCSV(a.ctx, f, time.Now().In(a.tz)); err != nil {
			return errMsg{err}
		}
		return statusMsg("exported to " + abs)
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	abs := path
	if !filepath.IsAbs(path) {
		if p, err := filepath.Abs(path); err == nil {
			abs = p
		}
	}
	return func() tea.Msg {
		f, err := os.Open(abs)
		if err != nil {
			return errMsg{fmt.Errorf("open %s: %w", abs, err)}
		}
		defer f.Close()
		res, err := a.services.Import.ImportCSV(a.ctx, f)
		if err != nil {
			return errMsg{err}
		}
		return importDoneMsg{Result: res}
	}
}

func (a *App) resetCmd() tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if err := a.services.Maintenance.Reset(a.ctx); err != nil {
				return errMsg{err}
			}
			a.txCursor, a.settingsCursor = 0, 0
			return statusMsg("database reset (empty)")
		},
		a.refreshAll(),
	)
}

// lookups

func (a *App) categoryByID(id string) *repository.Category {
	for _, c := range a.categories {
		if c.ID == id {
			copy := c
			return &copy
		}
	}
	return nil
}

func (a *App) categoryUnderCursor() *repository.Category {
	idx := a.settingsCursor - len(balanceFields)
	if idx < 0 || idx >= len(a.categories) {
		return nil
	}
	copy := a.categories[idx]
	return &copy
}

func (a *App) balanceValue(field int) int64 {
	switch field {
	case 0:
		return a.balances.Capital
	case 1:
		return a.balances.Savings
	case 2:
		return a.balances.EmergencyFund
	case 3:
		return a.balances.EmergencyGoal
	case 4:
		return a.balances.CarryOver
	}
	return 0
}

func defaultExportPath(month string) string {
	return fmt.Sprintf("waterline-%s.csv", month)
}

// messages
type transactionsMsg []repository.Transaction

type categoryListMsg []repository.Category

type budgetsMsg map[string]int64

type planMsg struct {
	balances repository.Balances
	result   planner.Result
}

type statusMsg string

type errMsg struct{ error }

type importDoneMsg struct {
	Result service.ImportResult
}
