package planner

// Month returns the snapshot for a YYYY-MM key. Selecting a month absent
// from the data yields a zero-valued placeholder that still carries the
// running totals accumulated through the latest processed month.
func (r Result) Month(key string) Snapshot {
	if s, ok := r.ByMonth[key]; ok {
		return s
	}
	s := Snapshot{Month: key, ByCategory: map[string]int64{}}
	if n := len(r.Months); n > 0 {
		last := r.Months[n-1]
		s.Capital = last.Capital
		s.Savings = last.Savings
		s.EmergencyFund = last.EmergencyFund
		s.UnfilledDeficit = last.UnfilledDeficit
		s.MonthlyBudget = last.SurplusForNextMonth
		s.MonthlyBudgetRemaining = s.MonthlyBudget
	}
	return s
}

// Latest returns the last processed month's snapshot, or a zero snapshot
// when no months were computed.
func (r Result) Latest() Snapshot {
	if n := len(r.Months); n > 0 {
		return r.Months[n-1]
	}
	return Snapshot{ByCategory: map[string]int64{}}
}
