package core

// Plan-fact math over a budget window. Every function here is a pure
// computation over the budget record, an aggregated spent amount, and
// an explicit reference date, so the whole set is deterministic under
// test. Spent amounts are the positive sum of matching expenses and
// come from the transaction store.

// RemainingAmount returns the planned amount minus spent.
// Negative when the budget is overspent.
func (b Budget) RemainingAmount(spent Money) Money {
	return b.Amount.Sub(spent)
}

// SpentPercentage returns spent as a percentage of the planned amount.
// A zero-amount budget yields 0, not a division error: a just-created
// budget with no amount is a normal steady state.
func (b Budget) SpentPercentage(spent Money) float64 {
	if b.Amount.IsZero() {
		return 0
	}
	return float64(spent.Kopecks) / float64(b.Amount.Kopecks) * 100
}

// RemainingPercentage returns the unspent share of the budget.
func (b Budget) RemainingPercentage(spent Money) float64 {
	return 100 - b.SpentPercentage(spent)
}

// IsOverspent reports whether spending exceeds the planned amount.
func (b Budget) IsOverspent(spent Money) bool {
	return spent.GreaterThan(b.Amount)
}

// DaysRemaining returns the days left until the end of the period,
// not counting today: on the last day of the period it is already 0.
// Unset dates or an ended period yield 0.
func (b Budget) DaysRemaining(today Date) int {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return 0
	}
	if today.After(b.EndDate) {
		return 0
	}
	return today.DaysUntil(b.EndDate)
}

// DaysTotal returns the inclusive length of the period in days,
// or 0 when either date is unset.
func (b Budget) DaysTotal() int {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return 0
	}
	return b.StartDate.DaysUntil(b.EndDate) + 1
}

// DailyBudgetRemaining returns how much can still be spent per day
// until the end of the period. Zero once the period has ended,
// regardless of the remaining amount's sign.
func (b Budget) DailyBudgetRemaining(spent Money, today Date) Money {
	days := b.DaysRemaining(today)
	if days <= 0 {
		return Money{}
	}
	return b.RemainingAmount(spent).DivRound(int64(days))
}

// Contains reports whether the date falls inside the inclusive
// [StartDate, EndDate] window.
func (b Budget) Contains(date Date) bool {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return false
	}
	return !date.Before(b.StartDate) && !date.After(b.EndDate)
}
