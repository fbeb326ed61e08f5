package repository

import "time"

// Reserved category names. Transactions in these categories are classified
// by the category itself, not by the user-picked tag.
const (
	CategoryIncome     = "Income"
	CategoryInvestment = "Investment"
)

// TxType is the direction of a transaction. Amounts are always >= 0;
// direction is carried here, never by a negative amount.
type TxType string

const (
	TypeIncome  TxType = "income"
	TypeExpense TxType = "expense"
)

// Tag classifies a transaction within its type.
type Tag string

const (
	TagNeed             Tag = "need"
	TagWant             Tag = "want"
	TagIncome           Tag = "income"
	TagInvestMonthly    Tag = "invest-monthly"
	TagInvestCumulative Tag = "invest-cumulative"
)

// InvestSource selects which capital pool an investment draws against.
type InvestSource string

const (
	SourceMonthly    InvestSource = "monthly"
	SourceCumulative InvestSource = "cumulative"
)

// Transaction represents a transaction row. Amount is in whole currency
// units; fractional input is truncated toward zero at entry time.
type Transaction struct {
	ID               int64
	Date             time.Time
	Category         string
	Amount           int64
	Type             TxType
	Tag              Tag
	Note             string
	GroupID          *string
	InvestSource     InvestSource
	FromSavings      bool
	FromEmergency    bool
	AssetLiquidation bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MonthKey returns the YYYY-MM bucket the transaction falls into.
func (t Transaction) MonthKey() string { return t.Date.Format("2006-01") }

// IsIncome reports whether the row is a regular income entry (asset
// liquidations are income-category rows but bypass the income pipeline).
func (t Transaction) IsIncome() bool {
	return t.Category == CategoryIncome && !t.AssetLiquidation
}

// IsInvestment reports whether the row draws against an investment pool.
func (t Transaction) IsInvestment() bool { return t.Category == CategoryInvestment }

// IsOrdinaryExpense reports whether the row is a user-category expense.
func (t Transaction) IsOrdinaryExpense() bool {
	return t.Type == TypeExpense && t.Category != CategoryIncome && t.Category != CategoryInvestment
}

// Category represents a user-defined expense category row.
type Category struct {
	ID        string
	Name      string
	SortOrder int
}

// Balances is the user-configured starting state for the allocation
// recurrence. A single row, mutated only through settings.
type Balances struct {
	Capital       int64 // starting cumulative investable capital
	Savings       int64 // starting cash savings
	EmergencyFund int64 // starting emergency-fund balance
	EmergencyGoal int64 // emergency-fund target
	CarryOver     int64 // investable budget for the earliest month
	UpdatedAt     time.Time
}

// Budget is a per-category monthly spending target.
type Budget struct {
	Category string
	Amount   int64
}
