package core

import (
	"errors"
	"strings"
)

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

const (
	Monthly PeriodType = "monthly"
	Weekly  PeriodType = "weekly"
	Yearly  PeriodType = "yearly"
)

const (
	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// Ledger entry amounts carry the sign of their type:
// deposit +, withdraw -, spend -.
const (
	EntryDeposit  EntryType = "deposit"
	EntryWithdraw EntryType = "withdraw"
	EntrySpend    EntryType = "spend"
)

type (
	CategoryType string
	PeriodType   string
	GoalStatus   string
	EntryType    string

	// Transaction is a single income or expense movement.
	// Positive amount is income, negative is expense.
	Transaction struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		Amount      Money
		Date        Date
		Description string
	}

	// Category classifies transactions for one user.
	// Unique per (user, name, type).
	Category struct {
		ID       int64
		UserID   int64
		Name     string
		Type     CategoryType
		Icon     string
		Color    string
		IsActive bool
	}

	// Budget is a planned spend for an expense category over an
	// inclusive [StartDate, EndDate] window.
	// Unique per (user, category, start_date, end_date).
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		PeriodType PeriodType
		StartDate  Date
		EndDate    Date
		IsActive   bool
	}

	// Goal is a savings target with an optional deadline.
	// Unique per (user, title).
	Goal struct {
		ID           int64
		UserID       int64
		Title        string
		TargetAmount Money
		Deadline     Date // zero when no deadline
		Status       GoalStatus
	}

	// GoalLedgerEntry is one append-only reservation against a goal.
	// The ledger is deliberately separate from Transaction: a deposit
	// is a reservation, not a cash movement, and must never count as
	// an expense.
	GoalLedgerEntry struct {
		ID                  int64
		GoalID              int64
		OccurredAt          Date
		Amount              Money
		EntryType           EntryType
		Comment             string
		LinkedTransactionID int64 // 0 when not linked; traceability only
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyTitle           = errors.New("empty title")
	ErrEmptyCategoryName    = errors.New("empty category name")
	ErrInvalidPeriod        = errors.New("invalid budget period")
	ErrNotExpenseCategory   = errors.New("budget requires an expense category")
	ErrInactiveCategory     = errors.New("category is inactive")
	ErrBudgetPeriodOverlap  = errors.New("category already has an active budget for this period")
	ErrCategoryExists       = errors.New("category with this name and type already exists")
	ErrGoalExists           = errors.New("goal with this title already exists")
	ErrInvalidGoalStatus    = errors.New("invalid goal status")
	ErrInvalidCategoryType  = errors.New("invalid category type")
	ErrCategoryNotOwned     = errors.New("category belongs to another user")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

// Validate checks the category invariants.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	switch c.Type {
	case Income, Expense:
	default:
		return ErrInvalidCategoryType
	}
	return nil
}

// Validate checks structural budget invariants. The cross-record
// overlap rule is enforced by the budget service against the store.
func (b Budget) Validate() error {
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	switch b.PeriodType {
	case Monthly, Weekly, Yearly:
	default:
		return ErrInvalidPeriod
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate) {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the goal invariants.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount.Kopecks <= 0 {
		return ErrInvalidAmount
	}
	switch g.Status {
	case GoalActive, GoalPaused, GoalCompleted, GoalCancelled:
	default:
		return ErrInvalidGoalStatus
	}
	return nil
}

// Validate checks the transaction invariants. A zero amount carries
// no information and is rejected; the sign itself is free.
func (t Transaction) Validate() error {
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// IsIncome reports whether the transaction is an income movement.
func (t Transaction) IsIncome() bool {
	return t.Amount.Kopecks > 0
}

// IsExpense reports whether the transaction is an expense movement.
func (t Transaction) IsExpense() bool {
	return t.Amount.Kopecks < 0
}
