package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"finhub/internal/core"
)

// memStore is an in-memory stand-in for storage.SQLiteRepository. It
// mirrors the repository's query semantics: half-open month windows,
// inclusive budget windows, nil for absent rows.
type memStore struct {
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	goals        map[int64]core.Goal
	entries      []core.GoalLedgerEntry
	nextID       int64
}

func newMemStore() *memStore {
	return &memStore{
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
		goals:        make(map[int64]core.Goal),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func fixedNow(year, month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	}
}

// inHalfOpen reports from <= d < toExcl.
func inHalfOpen(d, from, toExcl core.Date) bool {
	return !d.Before(from) && d.Before(toExcl)
}

// inInclusive reports from <= d <= toIncl.
func inInclusive(d, from, toIncl core.Date) bool {
	return !d.Before(from) && !d.After(toIncl)
}

// --- CategoryStore ---

func (m *memStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	for _, other := range m.categories {
		if other.UserID == c.UserID && other.Name == c.Name && other.Type == c.Type {
			return core.Category{}, core.ErrCategoryExists
		}
	}
	c.ID = m.id()
	m.categories[c.ID] = c
	return c, nil
}

func (m *memStore) GetCategory(_ context.Context, userID, id int64) (*core.Category, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	var out []core.Category
	for _, c := range m.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListActiveExpenseCategories(_ context.Context, userID int64) ([]core.Category, error) {
	var out []core.Category
	for _, c := range m.categories {
		if c.UserID == userID && c.IsActive && c.Type == core.Expense {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- TransactionStore / TransactionSums ---

func (m *memStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = m.id()
	m.transactions[t.ID] = t
	return t, nil
}

func (m *memStore) GetTransaction(_ context.Context, userID, id int64) (*core.Transaction, error) {
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return &t, nil
}

func (m *memStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	old, ok := m.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return sql.ErrNoRows
	}
	m.transactions[t.ID] = t
	return nil
}

func (m *memStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return sql.ErrNoRows
	}
	delete(m.transactions, id)
	return nil
}

func (m *memStore) ListTransactions(_ context.Context, userID int64, from, toExcl core.Date) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID && inHalfOpen(t.Date, from, toExcl) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SumCategoryExpenses(_ context.Context, userID, categoryID int64, from, to core.Date) (core.Money, error) {
	var total core.Money
	for _, t := range m.transactions {
		if t.UserID == userID && t.CategoryID == categoryID && t.Amount.IsNegative() && inInclusive(t.Date, from, to) {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total, nil
}

func (m *memStore) SumIncome(_ context.Context, userID int64, from, toExcl core.Date) (core.Money, error) {
	var total core.Money
	for _, t := range m.transactions {
		if t.UserID == userID && t.Amount.Kopecks > 0 && inHalfOpen(t.Date, from, toExcl) {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *memStore) SumExpenses(_ context.Context, userID int64, from, toExcl core.Date) (core.Money, error) {
	var total core.Money
	for _, t := range m.transactions {
		if t.UserID == userID && t.Amount.IsNegative() && inHalfOpen(t.Date, from, toExcl) {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total, nil
}

// --- BudgetStore ---

func (m *memStore) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	for _, other := range m.budgets {
		if other.UserID == b.UserID && other.CategoryID == b.CategoryID &&
			other.StartDate.Equal(b.StartDate) && other.EndDate.Equal(b.EndDate) {
			return core.Budget{}, core.ErrBudgetPeriodOverlap
		}
	}
	b.ID = m.id()
	m.budgets[b.ID] = b
	return b, nil
}

func (m *memStore) UpdateBudget(_ context.Context, b core.Budget) error {
	old, ok := m.budgets[b.ID]
	if !ok || old.UserID != b.UserID {
		return sql.ErrNoRows
	}
	m.budgets[b.ID] = b
	return nil
}

func (m *memStore) GetBudget(_ context.Context, userID, id int64) (*core.Budget, error) {
	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return nil, nil
	}
	return &b, nil
}

func (m *memStore) ListActiveBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListActiveBudgetsForCategory(_ context.Context, userID, categoryID int64) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindCurrentBudget(_ context.Context, userID, categoryID int64, date core.Date) (*core.Budget, error) {
	var found *core.Budget
	for id := range m.budgets {
		b := m.budgets[id]
		if b.UserID != userID || b.CategoryID != categoryID || !b.IsActive {
			continue
		}
		if !inInclusive(date, b.StartDate, b.EndDate) {
			continue
		}
		if found == nil || b.StartDate.After(found.StartDate) {
			found = &b
		}
	}
	return found, nil
}

func (m *memStore) ListMonthlyBudgetsByStart(_ context.Context, userID int64, starts []core.Date) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.UserID != userID || !b.IsActive || b.PeriodType != core.Monthly {
			continue
		}
		for _, s := range starts {
			if b.StartDate.Equal(s) {
				out = append(out, b)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListUsersWithActiveBudgets(_ context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	for _, b := range m.budgets {
		if b.IsActive {
			seen[b.UserID] = true
		}
	}
	var out []int64
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// --- GoalStore ---

func (m *memStore) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	for _, other := range m.goals {
		if other.UserID == g.UserID && other.Title == g.Title {
			return core.Goal{}, core.ErrGoalExists
		}
	}
	g.ID = m.id()
	m.goals[g.ID] = g
	return g, nil
}

func (m *memStore) GetGoal(_ context.Context, userID, id int64) (*core.Goal, error) {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return nil, nil
	}
	return &g, nil
}

func (m *memStore) ListGoals(_ context.Context, userID int64) ([]core.Goal, error) {
	var out []core.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) UpdateGoalStatus(_ context.Context, userID, id int64, status core.GoalStatus) error {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return sql.ErrNoRows
	}
	g.Status = status
	m.goals[id] = g
	return nil
}

func (m *memStore) AppendGoalEntry(_ context.Context, e core.GoalLedgerEntry) (core.GoalLedgerEntry, error) {
	e.ID = m.id()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) SumGoalEntries(_ context.Context, userID, goalID int64) (core.Money, error) {
	g, ok := m.goals[goalID]
	if !ok || g.UserID != userID {
		return core.Money{}, nil
	}
	var total core.Money
	for _, e := range m.entries {
		if e.GoalID == goalID {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *memStore) SumGoalEntriesInRange(_ context.Context, goalID int64, from, toExcl core.Date) (deposits, withdraws core.Money, err error) {
	for _, e := range m.entries {
		if e.GoalID != goalID || !inHalfOpen(e.OccurredAt, from, toExcl) {
			continue
		}
		if e.Amount.Kopecks > 0 {
			deposits = deposits.Add(e.Amount)
		} else {
			withdraws = withdraws.Add(e.Amount)
		}
	}
	return deposits, withdraws, nil
}

func (m *memStore) SumUserGoalAllocations(_ context.Context, userID int64, from, toExcl core.Date) (core.Money, error) {
	var total core.Money
	for _, e := range m.entries {
		g, ok := m.goals[e.GoalID]
		if !ok || g.UserID != userID || !inHalfOpen(e.OccurredAt, from, toExcl) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (m *memStore) ListRecentGoalEntries(_ context.Context, userID, goalID int64, limit int) ([]core.GoalLedgerEntry, error) {
	g, ok := m.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, nil
	}
	var out []core.GoalLedgerEntry
	for _, e := range m.entries {
		if e.GoalID == goalID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- seeding helpers ---

func (m *memStore) seedCategory(userID int64, name string, categoryType core.CategoryType, active bool) core.Category {
	c := core.Category{UserID: userID, Name: name, Type: categoryType, IsActive: active}
	c.ID = m.id()
	m.categories[c.ID] = c
	return c
}

func (m *memStore) seedTransaction(userID, categoryID int64, amount core.Money, date core.Date) core.Transaction {
	t := core.Transaction{UserID: userID, CategoryID: categoryID, Amount: amount, Date: date, Description: "seed"}
	t.ID = m.id()
	m.transactions[t.ID] = t
	return t
}

func (m *memStore) seedBudget(userID, categoryID int64, amount core.Money, start, end core.Date) core.Budget {
	b := core.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		PeriodType: core.Monthly,
		StartDate:  start,
		EndDate:    end,
		IsActive:   true,
	}
	b.ID = m.id()
	m.budgets[b.ID] = b
	return b
}

func (m *memStore) seedGoal(userID int64, title string, target core.Money, deadline core.Date) core.Goal {
	g := core.Goal{UserID: userID, Title: title, TargetAmount: target, Deadline: deadline, Status: core.GoalActive}
	g.ID = m.id()
	m.goals[g.ID] = g
	return g
}

func (m *memStore) seedEntry(goalID int64, amount core.Money, entryType core.EntryType, occurred core.Date) core.GoalLedgerEntry {
	e := core.GoalLedgerEntry{GoalID: goalID, Amount: amount, EntryType: entryType, OccurredAt: occurred}
	e.ID = m.id()
	m.entries = append(m.entries, e)
	return e
}
