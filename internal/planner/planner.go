// Package planner derives monthly allocation snapshots from raw transactions.
//
// The pipeline is Aggregate -> Compute -> Result.Month. Everything here is a
// pure function of its inputs: the same transactions, balances and policy
// always yield the same snapshots, and no state survives between calls.
package planner

import (
	"time"

	"waterline/internal/database/repository"
)

// MonthAggregate is one month's reduced totals, the engine's input.
type MonthAggregate struct {
	Month string // YYYY-MM

	Income           int64
	AssetLiquidation int64

	// Expense covers ordinary unflagged expenses plus monthly-budget-sourced
	// investments; cumulative-sourced investments never enter net income.
	Expense          int64
	SavingsExpense   int64
	EmergencyExpense int64

	InvestedFromMonthly    int64
	InvestedFromCumulative int64

	Need int64
	Want int64

	ByCategory map[string]int64
}

// Snapshot is one month's engine output, with every running balance captured
// after that month's transition. Snapshots are recomputed from scratch on
// every pass and never stored.
type Snapshot struct {
	Month string

	Income           int64
	Expense          int64
	Need             int64
	Want             int64
	AssetLiquidation int64
	SavingsExpense   int64
	EmergencyExpense int64
	NetIncome        int64

	DeficitIncurred int64 // new shortfall debited from capital this month
	DeficitRepaid   int64 // prior shortfall repaid from this month's surplus
	UnfilledDeficit int64 // running shortfall still outstanding

	EmergencyDiverted  int64 // surplus diverted to the emergency fund
	CapitalToEmergency int64 // idle capital lent to the emergency fund

	MonthlyBudget          int64 // investable budget available this month
	MonthlyBudgetRemaining int64 // budget left after monthly-sourced investments
	InvestedFromMonthly    int64
	InvestedFromCumulative int64

	SurplusForNextMonth int64 // 90% share, next month's budget
	SavingsAddon        int64 // 10% share added to savings

	Capital       int64 // running cumulative investable capital
	Savings       int64 // running cash savings
	EmergencyFund int64 // running emergency-fund balance

	ByCategory map[string]int64
}

// Invested returns the month's total investment outflow across both pools.
func (s Snapshot) Invested() int64 {
	return s.InvestedFromMonthly + s.InvestedFromCumulative
}

// Result is the full recurrence output, in ascending month order.
type Result struct {
	Months  []Snapshot
	ByMonth map[string]Snapshot
}

// Policy holds the evolution-dependent toggles of the transition rule.
type Policy struct {
	// CapitalToEmergency lets idle cumulative capital top up the emergency
	// fund after the per-month transition, ahead of future investment.
	CapitalToEmergency bool
}

// DefaultPolicy is the canonical behavior: strict deficits with the
// capital-priority transfer enabled.
func DefaultPolicy() Policy { return Policy{CapitalToEmergency: true} }

// ComputeSnapshots is the whole pipeline in one call: bucket transactions by
// calendar month (through now), aggregate, and run the recurrence.
func ComputeSnapshots(txs []repository.Transaction, balances repository.Balances, now time.Time, policy Policy) Result {
	months, aggs := Aggregate(txs, MonthSpan(txs, now))
	return Compute(months, aggs, balances, policy)
}

// GoalProgress returns the emergency fund as a percentage of its goal,
// clamped to [0, 100]. A zero or negative goal reads as 0%, never NaN.
func GoalProgress(fund, goal int64) float64 {
	if goal <= 0 {
		return 0
	}
	if fund <= 0 {
		return 0
	}
	p := float64(fund) / float64(goal) * 100
	if p > 100 {
		return 100
	}
	return p
}
