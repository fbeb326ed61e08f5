package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"waterline/internal/calc"
	"waterline/internal/database/repository"
	"waterline/internal/service"
)

// txForm is the add/edit transaction form. Text fields are bubbles inputs;
// tag, pool flag and invest source are cycled with control keys so typing in
// a field never collides with a toggle.
type txForm struct {
	editingID int64 // 0 means a new transaction
	groupID   *string

	inputs []textinput.Model
	focus  int

	tag    repository.Tag
	flag   poolFlag
	source repository.InvestSource
}

type poolFlag int

const (
	flagNone poolFlag = iota
	flagSavings
	flagEmergency
	flagAsset
)

func (f poolFlag) String() string {
	switch f {
	case flagSavings:
		return "from savings"
	case flagEmergency:
		return "from emergency"
	case flagAsset:
		return "asset liquidation"
	default:
		return "none"
	}
}

const (
	fieldDate = iota
	fieldAmount
	fieldCategory
	fieldNote
	fieldInstallments
	fieldCount
)

func newTxForm() *txForm {
	f := &txForm{tag: repository.TagNeed, source: repository.SourceMonthly}
	labels := [fieldCount]string{"Date (YYYY-MM-DD)", "Amount", "Category", "Note", "Installments"}
	f.inputs = make([]textinput.Model, fieldCount)
	for i := range f.inputs {
		inp := textinput.New()
		inp.Prompt = labels[i] + ": "
		f.inputs[i] = inp
	}
	f.inputs[fieldDate].SetValue(time.Now().Format("2006-01-02"))
	f.inputs[fieldInstallments].SetValue("1")
	f.inputs[fieldAmount].Focus()
	f.focus = fieldAmount
	return f
}

func editTxForm(tx repository.Transaction) *txForm {
	f := newTxForm()
	f.editingID = tx.ID
	f.groupID = tx.GroupID
	f.inputs[fieldDate].SetValue(tx.Date.Format("2006-01-02"))
	f.inputs[fieldAmount].SetValue(strconv.FormatInt(tx.Amount, 10))
	f.inputs[fieldCategory].SetValue(tx.Category)
	f.inputs[fieldNote].SetValue(tx.Note)
	f.inputs[fieldInstallments].SetValue("1")
	f.tag = tx.Tag
	f.source = tx.InvestSource
	switch {
	case tx.FromSavings:
		f.flag = flagSavings
	case tx.FromEmergency:
		f.flag = flagEmergency
	case tx.AssetLiquidation:
		f.flag = flagAsset
	}
	return f
}

func (f *txForm) move(dir int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
	// Installment count is fixed once a cohort exists.
	if f.editingID != 0 && f.focus == fieldInstallments {
		f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
	}
	f.inputs[f.focus].Focus()
}

func (f *txForm) cycleTag() {
	if f.tag == repository.TagNeed {
		f.tag = repository.TagWant
	} else {
		f.tag = repository.TagNeed
	}
}

func (f *txForm) cycleFlag() {
	f.flag = (f.flag + 1) % 4
}

func (f *txForm) cycleSource() {
	if f.source == repository.SourceMonthly {
		f.source = repository.SourceCumulative
	} else {
		f.source = repository.SourceMonthly
	}
}

// build validates the form and assembles the transaction plus the requested
// installment count. Amount accepts arithmetic expressions; the category is
// fuzzy-matched against the known set and kept verbatim when nothing is
// close enough (the save path creates it).
func (f *txForm) build(categories []repository.Category) (repository.Transaction, int, error) {
	var tx repository.Transaction

	date, err := time.Parse("2006-01-02", strings.TrimSpace(f.inputs[fieldDate].Value()))
	if err != nil {
		return tx, 0, fmt.Errorf("date must be YYYY-MM-DD")
	}

	amount, err := calc.EvalAmount(f.inputs[fieldAmount].Value())
	if err != nil {
		return tx, 0, fmt.Errorf("amount: %w", err)
	}
	if amount <= 0 {
		return tx, 0, fmt.Errorf("amount must be positive")
	}

	name := strings.TrimSpace(f.inputs[fieldCategory].Value())
	if name == "" {
		return tx, 0, fmt.Errorf("category is required")
	}
	if matched, ok := service.MatchCategory(name, categories); ok {
		name = matched
	}

	installments := 1
	if raw := strings.TrimSpace(f.inputs[fieldInstallments].Value()); raw != "" {
		installments, err = strconv.Atoi(raw)
		if err != nil || installments < 1 {
			return tx, 0, fmt.Errorf("installments must be a positive count")
		}
	}

	tx.ID = f.editingID
	tx.GroupID = f.groupID
	tx.Date = date
	tx.Amount = amount
	tx.Category = name
	tx.Note = strings.TrimSpace(f.inputs[fieldNote].Value())

	switch name {
	case repository.CategoryIncome:
		tx.Type = repository.TypeIncome
		tx.Tag = repository.TagIncome
		tx.AssetLiquidation = f.flag == flagAsset
	case repository.CategoryInvestment:
		tx.Type = repository.TypeExpense
		tx.InvestSource = f.source
		tx.Tag = repository.TagInvestMonthly
		if f.source == repository.SourceCumulative {
			tx.Tag = repository.TagInvestCumulative
		}
	default:
		tx.Type = repository.TypeExpense
		tx.Tag = f.tag
		tx.FromSavings = f.flag == flagSavings
		tx.FromEmergency = f.flag == flagEmergency
	}
	return tx, installments, nil
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.form = nil
		a.state = viewHistory
		return a, nil
	case "tab", "down":
		f.move(1)
		return a, nil
	case "shift+tab", "up":
		f.move(-1)
		return a, nil
	case "ctrl+t":
		f.cycleTag()
		return a, nil
	case "ctrl+f":
		f.cycleFlag()
		return a, nil
	case "ctrl+r":
		f.cycleSource()
		return a, nil
	case "enter":
		tx, installments, err := f.build(a.categories)
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.form = nil
		a.state = viewHistory
		return a, a.saveTransactionCmd(tx, installments)
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(m)
	return a, cmd
}

func (a *App) renderForm() string {
	f := a.form
	title := "Add Transaction"
	if f.editingID != 0 {
		title = fmt.Sprintf("Edit Transaction #%d", f.editingID)
	}
	lines := []string{titleStyle.Render(title), ""}
	for i, in := range f.inputs {
		if f.editingID != 0 && i == fieldInstallments {
			continue
		}
		lines = append(lines, in.View())
	}
	lines = append(lines, "",
		fmt.Sprintf("Tag: %s   Pool flag: %s   Invest source: %s", f.tag, f.flag, f.source),
		"",
		"Amount accepts expressions, e.g. 120+45*2 or 1500/3.",
		"Income and Investment categories classify themselves; the tag toggle applies elsewhere.",
		"",
		"[enter] Save  [tab] Next field  [ctrl+t] Need/Want  [ctrl+f] Pool flag  [ctrl+r] Invest source  [esc] Cancel")
	if a.status != "" {
		lines = append(lines, "", a.status)
	}
	return strings.Join(lines, "\n")
}
