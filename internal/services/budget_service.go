package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finhub/internal/core"
)

// BudgetService is the plan-fact engine: it derives spent, remaining,
// pace and overspend metrics for a budget window on demand. Nothing is
// cached or materialized, every call recomputes from the current
// transaction state.
type BudgetService struct {
	budgets BudgetStore
	txs     TransactionSums
	cats    CategoryStore
	now     func() time.Time
}

func NewBudgetService(budgets BudgetStore, txs TransactionSums, cats CategoryStore) *BudgetService {
	return &BudgetService{
		budgets: budgets,
		txs:     txs,
		cats:    cats,
		now:     time.Now,
	}
}

// BudgetMetrics is the full plan-fact picture of one budget as of a
// reference date. Percentages are unrounded; rounding belongs to the
// presentation layer.
type BudgetMetrics struct {
	Budget               core.Budget
	Spent                core.Money
	Remaining            core.Money
	SpentPercentage      float64
	RemainingPercentage  float64
	IsOverspent          bool
	DaysRemaining        int
	DaysTotal            int
	DailyBudgetRemaining core.Money
}

func (s *BudgetService) today() core.Date {
	return core.DateOf(s.now())
}

// SpentAmount returns the positive expense total for the budget's
// category inside its window. Zero when nothing matched.
func (s *BudgetService) SpentAmount(ctx context.Context, b core.Budget) (core.Money, error) {
	spent, err := s.txs.SumCategoryExpenses(ctx, b.UserID, b.CategoryID, b.StartDate, b.EndDate)
	if err != nil {
		return core.Money{}, fmt.Errorf("spent amount: %w", err)
	}
	return spent, nil
}

// Metrics computes every derived metric for the budget as of the
// given date. A zero date means "as of now".
func (s *BudgetService) Metrics(ctx context.Context, b core.Budget, asOf core.Date) (BudgetMetrics, error) {
	if asOf.IsZero() {
		asOf = s.today()
	}
	spent, err := s.SpentAmount(ctx, b)
	if err != nil {
		return BudgetMetrics{}, err
	}
	return BudgetMetrics{
		Budget:               b,
		Spent:                spent,
		Remaining:            b.RemainingAmount(spent),
		SpentPercentage:      b.SpentPercentage(spent),
		RemainingPercentage:  b.RemainingPercentage(spent),
		IsOverspent:          b.IsOverspent(spent),
		DaysRemaining:        b.DaysRemaining(asOf),
		DaysTotal:            b.DaysTotal(),
		DailyBudgetRemaining: b.DailyBudgetRemaining(spent, asOf),
	}, nil
}

// CreateBudget validates and persists a budget. The category must be
// the user's own active expense category, and the window must not
// overlap any of the category's existing active budgets.
func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	fillMonthlyEndDate(&b)
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkCategory(ctx, b.UserID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	if err := s.checkOverlap(ctx, b, 0); err != nil {
		return core.Budget{}, err
	}

	b.IsActive = true
	created, err := s.budgets.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget created",
		"budget_id", created.ID,
		"user_id", created.UserID,
		"category_id", created.CategoryID,
		"amount", created.Amount.String(),
		"period", string(created.PeriodType),
		"start_date", created.StartDate.Format("2006-01-02"),
		"end_date", created.EndDate.Format("2006-01-02"))

	return created, nil
}

// CreateMonthlyBudget builds a budget spanning the given calendar
// month and persists it.
func (s *BudgetService) CreateMonthlyBudget(ctx context.Context, userID, categoryID int64, amount core.Money, year, month int) (core.Budget, error) {
	start := core.NewDate(year, month, 1)
	return s.CreateBudget(ctx, core.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		PeriodType: core.Monthly,
		StartDate:  start,
		EndDate:    core.MonthEnd(start),
	})
}

// UpdateBudget applies amount/date/status edits to an existing budget,
// revalidating the overlap rule against everything but itself.
func (s *BudgetService) UpdateBudget(ctx context.Context, b core.Budget) error {
	old, err := s.budgets.GetBudget(ctx, b.UserID, b.ID)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("budget %d: not found", b.ID)
	}

	fillMonthlyEndDate(&b)
	if err := b.Validate(); err != nil {
		return err
	}
	if b.IsActive {
		if err := s.checkOverlap(ctx, b, b.ID); err != nil {
			return err
		}
	}

	if err := s.budgets.UpdateBudget(ctx, b); err != nil {
		return err
	}

	var changes []string
	if old.Amount != b.Amount {
		changes = append(changes, fmt.Sprintf("amount: %s -> %s", old.Amount, b.Amount))
	}
	if old.IsActive != b.IsActive {
		changes = append(changes, fmt.Sprintf("active: %t -> %t", old.IsActive, b.IsActive))
	}
	if !old.StartDate.Equal(b.StartDate) || !old.EndDate.Equal(b.EndDate) {
		changes = append(changes, "dates changed")
	}
	if len(changes) > 0 {
		slog.InfoContext(ctx, "Budget updated",
			"budget_id", b.ID,
			"user_id", b.UserID,
			"changes", changes)
	}

	spent, err := s.SpentAmount(ctx, b)
	if err != nil {
		return err
	}
	if b.IsOverspent(spent) {
		slog.WarnContext(ctx, "Budget overspent",
			"budget_id", b.ID,
			"user_id", b.UserID,
			"amount", b.Amount.String(),
			"spent", spent.String(),
			"overage", spent.Sub(b.Amount).String())
	}

	return nil
}

// ListActive returns the user's active budgets, newest first.
func (s *BudgetService) ListActive(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.budgets.ListActiveBudgets(ctx, userID)
}

// CurrentBudget returns the active budget whose window contains the
// date, or nil when none does. A zero date means "as of now".
func (s *BudgetService) CurrentBudget(ctx context.Context, userID, categoryID int64, date core.Date) (*core.Budget, error) {
	if date.IsZero() {
		date = s.today()
	}
	return s.budgets.FindCurrentBudget(ctx, userID, categoryID, date)
}

// CategoryBudgetInfo returns the full metrics of the category's
// current budget, or nil when the category has none. This lookup lives
// on the budget engine so that Category never depends on Budget.
func (s *BudgetService) CategoryBudgetInfo(ctx context.Context, userID, categoryID int64, date core.Date) (*BudgetMetrics, error) {
	if date.IsZero() {
		date = s.today()
	}
	b, err := s.CurrentBudget(ctx, userID, categoryID, date)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	m, err := s.Metrics(ctx, *b, date)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *BudgetService) checkCategory(ctx context.Context, userID, categoryID int64) error {
	cat, err := s.cats.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return core.ErrCategoryNotOwned
	}
	if cat.Type != core.Expense {
		return core.ErrNotExpenseCategory
	}
	if !cat.IsActive {
		return core.ErrInactiveCategory
	}
	return nil
}

// checkOverlap enforces the "no two active budgets with overlapping
// windows per category" rule. The store's uniqueness constraint backs
// this up when two writers race past the check.
func (s *BudgetService) checkOverlap(ctx context.Context, b core.Budget, excludeID int64) error {
	existing, err := s.budgets.ListActiveBudgetsForCategory(ctx, b.UserID, b.CategoryID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if !b.StartDate.After(other.EndDate) && !b.EndDate.Before(other.StartDate) {
			return core.ErrBudgetPeriodOverlap
		}
	}
	return nil
}

// fillMonthlyEndDate completes a monthly budget created with only a
// start date: the window runs to the last day of the start month.
func fillMonthlyEndDate(b *core.Budget) {
	if b.PeriodType == core.Monthly && b.EndDate.IsZero() && !b.StartDate.IsZero() {
		b.EndDate = core.MonthEnd(b.StartDate)
	}
}
