package planner

import (
	"sort"
	"time"

	"waterline/internal/database/repository"
)

const monthLayout = "2006-01"

// MonthSpan returns every YYYY-MM key from the earliest month touched by the
// data through the latest, gap-filled, always including now's month. Months
// with no transactions still run the full transition downstream.
func MonthSpan(txs []repository.Transaction, now time.Time) []string {
	lo := now.Format(monthLayout)
	hi := lo
	for _, t := range txs {
		k := t.MonthKey()
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	return monthRange(lo, hi)
}

func monthRange(lo, hi string) []string {
	start, err := time.Parse(monthLayout, lo)
	if err != nil {
		return []string{lo}
	}
	end, err := time.Parse(monthLayout, hi)
	if err != nil {
		return []string{lo}
	}
	var out []string
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		out = append(out, m.Format(monthLayout))
	}
	return out
}

// Aggregate reduces transactions into per-month totals over the given month
// set. A transaction whose month key is missing from the set still gets a
// bucket; the returned keys are the (possibly grown) set in ascending order.
func Aggregate(txs []repository.Transaction, months []string) ([]string, map[string]MonthAggregate) {
	aggs := make(map[string]MonthAggregate, len(months))
	keys := make([]string, 0, len(months))
	for _, k := range months {
		if _, ok := aggs[k]; ok {
			continue
		}
		aggs[k] = MonthAggregate{Month: k, ByCategory: map[string]int64{}}
		keys = append(keys, k)
	}

	grown := false
	for _, t := range txs {
		k := t.MonthKey()
		agg, ok := aggs[k]
		if !ok {
			agg = MonthAggregate{Month: k, ByCategory: map[string]int64{}}
			keys = append(keys, k)
			grown = true
		}
		addToAggregate(&agg, t)
		aggs[k] = agg
	}
	if grown {
		sort.Strings(keys)
	}
	return keys, aggs
}

func addToAggregate(agg *MonthAggregate, t repository.Transaction) {
	amt := t.Amount
	switch {
	case t.Category == repository.CategoryIncome:
		if t.Type != repository.TypeIncome {
			return
		}
		if t.AssetLiquidation {
			agg.AssetLiquidation += amt
		} else {
			agg.Income += amt
		}
	case t.Category == repository.CategoryInvestment:
		if t.InvestSource == repository.SourceCumulative {
			agg.InvestedFromCumulative += amt
		} else {
			// Monthly-budget draws count as expense for net-income purposes.
			agg.InvestedFromMonthly += amt
			agg.Expense += amt
		}
	default:
		if t.Type != repository.TypeExpense {
			return
		}
		agg.ByCategory[t.Category] += amt
		switch {
		case t.FromSavings:
			agg.SavingsExpense += amt
		case t.FromEmergency:
			agg.EmergencyExpense += amt
		default:
			agg.Expense += amt
			switch t.Tag {
			case repository.TagWant:
				agg.Want += amt
			default:
				agg.Need += amt
			}
		}
	}
}
