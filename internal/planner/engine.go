package planner

import "waterline/internal/database/repository"

// Compute runs the allocation recurrence over months in ascending order,
// threading the running balances through the per-month transition:
//
//  1. this month's investable budget is last month's carried-over surplus
//  2. pool-flagged amounts settle against savings / emergency directly
//  3. a deficit month debits capital immediately and accrues the shortfall
//  4. a surplus month repays outstanding shortfall, then tops up the
//     emergency fund, then splits the residual 90/10 into next month's
//     budget and savings, strictly in that order
//  5. each investment source draws down its own declared pool
//  6. optionally, idle capital lends to a still-unfilled emergency fund
//
// Order matters: later months' repayment and top-up depend on the exact
// prior-month ending balances.
func Compute(months []string, aggs map[string]MonthAggregate, start repository.Balances, policy Policy) Result {
	res := Result{ByMonth: make(map[string]Snapshot, len(months))}

	var unfilled int64
	capital := start.Capital
	savings := start.Savings
	emergency := start.EmergencyFund
	goal := start.EmergencyGoal
	carryOver := start.CarryOver

	for _, key := range months {
		agg, ok := aggs[key]
		if !ok {
			agg = MonthAggregate{Month: key}
		}

		budget := carryOver
		net := agg.Income - agg.Expense

		savings += agg.AssetLiquidation - agg.SavingsExpense
		emergency -= agg.EmergencyExpense

		var incurred, repaid, diverted, addon, surplusNext int64
		if net < 0 {
			incurred = -net
			capital -= incurred
			unfilled += incurred
		} else {
			repaid = min(net, unfilled)
			unfilled -= repaid
			capital += repaid // reverses the earlier strict debit
			avail := net - repaid

			if gap := goal - emergency; gap > 0 {
				diverted = min(avail, gap)
				emergency += diverted
				avail -= diverted
			}

			// 90/10 split of the residual only; the shares always sum to it.
			addon = avail / 10
			surplusNext = avail - addon
			savings += addon
		}

		capital += budget - agg.InvestedFromMonthly
		capital -= agg.InvestedFromCumulative

		var lent int64
		if policy.CapitalToEmergency {
			if gap := goal - emergency; gap > 0 && capital > 0 {
				lent = min(capital, gap)
				capital -= lent
				emergency += lent
			}
		}

		carryOver = surplusNext

		snap := Snapshot{
			Month:                  key,
			Income:                 agg.Income,
			Expense:                agg.Expense,
			Need:                   agg.Need,
			Want:                   agg.Want,
			AssetLiquidation:       agg.AssetLiquidation,
			SavingsExpense:         agg.SavingsExpense,
			EmergencyExpense:       agg.EmergencyExpense,
			NetIncome:              net,
			DeficitIncurred:        incurred,
			DeficitRepaid:          repaid,
			UnfilledDeficit:        unfilled,
			EmergencyDiverted:      diverted,
			CapitalToEmergency:     lent,
			MonthlyBudget:          budget,
			MonthlyBudgetRemaining: budget - agg.InvestedFromMonthly,
			InvestedFromMonthly:    agg.InvestedFromMonthly,
			InvestedFromCumulative: agg.InvestedFromCumulative,
			SurplusForNextMonth:    surplusNext,
			SavingsAddon:           addon,
			Capital:                capital,
			Savings:                savings,
			EmergencyFund:          emergency,
			ByCategory:             agg.ByCategory,
		}
		if snap.ByCategory == nil {
			snap.ByCategory = map[string]int64{}
		}
		res.Months = append(res.Months, snap)
		res.ByMonth[key] = snap
	}
	return res
}
