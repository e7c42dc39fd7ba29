// Package services holds the business logic of the tracker: the
// budget plan-fact engine, the goal ledger and allocation engine, the
// recommendation scan, and the transaction and report services.
//
// Services depend only on the port interfaces below, never on a live
// database handle. *storage.SQLiteRepository satisfies all of them;
// tests use in-memory fakes.
package services

import (
	"context"

	"finhub/internal/core"
)

type (
	// TransactionStore provides transaction persistence.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
		ListTransactions(ctx context.Context, userID int64, from, toExcl core.Date) ([]core.Transaction, error)
	}

	// TransactionSums provides the aggregate queries the engines
	// consume: sums of signed amounts by user, category and window.
	TransactionSums interface {
		// SumCategoryExpenses returns the positive expense total for a
		// category in the inclusive [from, to] window.
		SumCategoryExpenses(ctx context.Context, userID, categoryID int64, from, to core.Date) (core.Money, error)
		// SumIncome returns the income total in [from, toExcl).
		SumIncome(ctx context.Context, userID int64, from, toExcl core.Date) (core.Money, error)
		// SumExpenses returns the positive expense total in [from, toExcl).
		SumExpenses(ctx context.Context, userID int64, from, toExcl core.Date) (core.Money, error)
	}

	// CategoryStore provides the category registry.
	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		GetCategory(ctx context.Context, userID, id int64) (*core.Category, error)
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
		ListActiveExpenseCategories(ctx context.Context, userID int64) ([]core.Category, error)
	}

	// BudgetStore provides budget persistence and window lookups.
	BudgetStore interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) error
		GetBudget(ctx context.Context, userID, id int64) (*core.Budget, error)
		ListActiveBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
		ListActiveBudgetsForCategory(ctx context.Context, userID, categoryID int64) ([]core.Budget, error)
		FindCurrentBudget(ctx context.Context, userID, categoryID int64, date core.Date) (*core.Budget, error)
		ListMonthlyBudgetsByStart(ctx context.Context, userID int64, starts []core.Date) ([]core.Budget, error)
		ListUsersWithActiveBudgets(ctx context.Context) ([]int64, error)
	}

	// GoalStore provides goal and goal-ledger persistence.
	GoalStore interface {
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		GetGoal(ctx context.Context, userID, id int64) (*core.Goal, error)
		ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
		UpdateGoalStatus(ctx context.Context, userID, id int64, status core.GoalStatus) error
		AppendGoalEntry(ctx context.Context, e core.GoalLedgerEntry) (core.GoalLedgerEntry, error)
		SumGoalEntries(ctx context.Context, userID, goalID int64) (core.Money, error)
		SumGoalEntriesInRange(ctx context.Context, goalID int64, from, toExcl core.Date) (deposits, withdraws core.Money, err error)
		SumUserGoalAllocations(ctx context.Context, userID int64, from, toExcl core.Date) (core.Money, error)
		ListRecentGoalEntries(ctx context.Context, userID, goalID int64, limit int) ([]core.GoalLedgerEntry, error)
	}
)
