package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finhub/internal/core"
)

// GoalService is the goal ledger and allocation engine.
//
// Transactions reflect actual cash movements; goals keep a separate
// reservation ledger that reduces what is "free to spend" in a month
// without ever counting as an expense.
type GoalService struct {
	goals       GoalStore
	txs         TransactionSums
	recommender Recommender
	now         func() time.Time
}

// Recommender supplies the advisory entries shown on a goal card.
type Recommender interface {
	BudgetUnderuse(ctx context.Context, userID int64, today core.Date) ([]Recommendation, error)
}

func NewGoalService(goals GoalStore, txs TransactionSums, recommender Recommender) *GoalService {
	return &GoalService{
		goals:       goals,
		txs:         txs,
		recommender: recommender,
		now:         time.Now,
	}
}

// GoalMonthMetrics sums a goal's ledger activity inside one calendar
// month. Withdraws keep their negative sign.
type GoalMonthMetrics struct {
	Deposits  core.Money
	Withdraws core.Money
	Net       core.Money
}

// GoalCard aggregates everything a presentation layer needs to render
// one goal: balance, progress, monthly plan-fact, free funds, and up
// to three funding recommendations.
type GoalCard struct {
	Goal               core.Goal
	Balance            core.Money // floored at zero for display
	Target             core.Money
	RemainingTotal     core.Money
	ProgressPercentage float64

	// Monthly pacing; meaningful only when HasMonthlyPlan is set,
	// which requires a deadline that has not passed.
	HasMonthlyPlan     bool
	MonthsRemaining    int
	PlannedPerMonth    core.Money
	DepositedThisMonth core.Money
	WithdrawnThisMonth core.Money // positive for display
	RemainingThisMonth core.Money

	FreeFundsThisMonth core.Money
	Recommendations    []Recommendation
}

func (s *GoalService) today() core.Date {
	return core.DateOf(s.now())
}

// CreateGoal validates and persists a new active goal.
func (s *GoalService) CreateGoal(ctx context.Context, userID int64, title string, target core.Money, deadline core.Date) (core.Goal, error) {
	g := core.Goal{
		UserID:       userID,
		Title:        title,
		TargetAmount: target,
		Deadline:     deadline,
		Status:       core.GoalActive,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	created, err := s.goals.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, err
	}
	slog.InfoContext(ctx, "Goal created",
		"goal_id", created.ID,
		"user_id", created.UserID,
		"target", created.TargetAmount.String())
	return created, nil
}

// ListGoals returns the user's goals, newest first.
func (s *GoalService) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	return s.goals.ListGoals(ctx, userID)
}

// GetGoal returns the user's goal, or nil when absent.
func (s *GoalService) GetGoal(ctx context.Context, userID, goalID int64) (*core.Goal, error) {
	return s.goals.GetGoal(ctx, userID, goalID)
}

// UpdateStatus moves the goal to a new lifecycle status.
func (s *GoalService) UpdateStatus(ctx context.Context, userID, goalID int64, status core.GoalStatus) error {
	switch status {
	case core.GoalActive, core.GoalPaused, core.GoalCompleted, core.GoalCancelled:
	default:
		return core.ErrInvalidGoalStatus
	}
	return s.goals.UpdateGoalStatus(ctx, userID, goalID, status)
}

// AddDeposit reserves money into the goal: a positive append-only
// ledger entry. Returns nil when the goal is absent for the user.
func (s *GoalService) AddDeposit(ctx context.Context, userID, goalID int64, amount core.Money, comment string) (*core.GoalLedgerEntry, error) {
	return s.appendEntry(ctx, userID, goalID, amount.Abs(), core.EntryDeposit, comment)
}

// AddWithdraw releases money from the goal: a negative entry.
// Returns nil when the goal is absent for the user.
func (s *GoalService) AddWithdraw(ctx context.Context, userID, goalID int64, amount core.Money, comment string) (*core.GoalLedgerEntry, error) {
	return s.appendEntry(ctx, userID, goalID, amount.Abs().Neg(), core.EntryWithdraw, comment)
}

func (s *GoalService) appendEntry(ctx context.Context, userID, goalID int64, amount core.Money, entryType core.EntryType, comment string) (*core.GoalLedgerEntry, error) {
	if amount.IsZero() {
		return nil, core.ErrInvalidAmount
	}
	goal, err := s.goals.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}
	entry, err := s.goals.AppendGoalEntry(ctx, core.GoalLedgerEntry{
		GoalID:     goalID,
		OccurredAt: s.today(),
		Amount:     amount,
		EntryType:  entryType,
		Comment:    comment,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Goal ledger entry added",
		"goal_id", goalID,
		"entry_id", entry.ID,
		"entry_type", string(entryType),
		"amount", amount.String())
	return &entry, nil
}

// Balance returns the raw running sum of the goal's ledger. It can go
// negative when over-withdrawn; display flooring happens on the card.
func (s *GoalService) Balance(ctx context.Context, userID, goalID int64) (core.Money, error) {
	return s.goals.SumGoalEntries(ctx, userID, goalID)
}

// RecentEntries returns the newest ledger entries of the goal.
func (s *GoalService) RecentEntries(ctx context.Context, userID, goalID int64, limit int) ([]core.GoalLedgerEntry, error) {
	if limit <= 0 {
		limit = 15
	}
	return s.goals.ListRecentGoalEntries(ctx, userID, goalID, limit)
}

// FreeFundsForMonth computes what is genuinely free to spend in the
// month containing the given date:
//
//	income - expenses - net goal allocations
//
// Money reserved into a goal is excluded from "free" even though it
// never was an expense transaction; that is the whole point of the
// separate ledger.
func (s *GoalService) FreeFundsForMonth(ctx context.Context, userID int64, month core.Date) (core.Money, error) {
	start := core.MonthStart(month)
	end := core.NextMonthStart(month)

	income, err := s.txs.SumIncome(ctx, userID, start, end)
	if err != nil {
		return core.Money{}, fmt.Errorf("free funds income: %w", err)
	}
	expenses, err := s.txs.SumExpenses(ctx, userID, start, end)
	if err != nil {
		return core.Money{}, fmt.Errorf("free funds expenses: %w", err)
	}
	allocations, err := s.goals.SumUserGoalAllocations(ctx, userID, start, end)
	if err != nil {
		return core.Money{}, fmt.Errorf("free funds allocations: %w", err)
	}

	return income.Sub(expenses).Sub(allocations), nil
}

// MonthMetrics sums the goal's ledger activity for the month
// containing the given date.
func (s *GoalService) MonthMetrics(ctx context.Context, goalID int64, month core.Date) (GoalMonthMetrics, error) {
	start := core.MonthStart(month)
	end := core.NextMonthStart(month)
	deposits, withdraws, err := s.goals.SumGoalEntriesInRange(ctx, goalID, start, end)
	if err != nil {
		return GoalMonthMetrics{}, err
	}
	return GoalMonthMetrics{
		Deposits:  deposits,
		Withdraws: withdraws,
		Net:       deposits.Add(withdraws),
	}, nil
}

// Card builds the full goal card as of the given date. A zero date
// means "as of now". Returns nil when the goal is absent.
func (s *GoalService) Card(ctx context.Context, userID, goalID int64, today core.Date) (*GoalCard, error) {
	goal, err := s.goals.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, nil
	}
	if today.IsZero() {
		today = s.today()
	}

	rawBalance, err := s.Balance(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	balance := rawBalance
	if balance.IsNegative() {
		balance = core.Money{}
	}

	target := goal.TargetAmount
	remainingTotal := target.Sub(balance)
	if remainingTotal.IsNegative() {
		remainingTotal = core.Money{}
	}
	progress := 0.0
	if target.Kopecks > 0 {
		progress = float64(balance.Kopecks) / float64(target.Kopecks) * 100
	}

	card := &GoalCard{
		Goal:               *goal,
		Balance:            balance,
		Target:             target,
		RemainingTotal:     remainingTotal,
		ProgressPercentage: progress,
	}

	if !goal.Deadline.IsZero() && !goal.Deadline.Before(today) {
		months := core.MonthsInclusive(today, goal.Deadline)
		if months > 0 {
			card.HasMonthlyPlan = true
			card.MonthsRemaining = months
			card.PlannedPerMonth = remainingTotal.DivRound(int64(months))
		}
	}

	metrics, err := s.MonthMetrics(ctx, goalID, today)
	if err != nil {
		return nil, err
	}
	card.DepositedThisMonth = metrics.Deposits
	card.WithdrawnThisMonth = metrics.Withdraws.Abs()
	if card.HasMonthlyPlan {
		remaining := card.PlannedPerMonth.Sub(metrics.Deposits)
		if remaining.IsNegative() {
			remaining = core.Money{}
		}
		card.RemainingThisMonth = remaining
	}

	freeFunds, err := s.FreeFundsForMonth(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	card.FreeFundsThisMonth = freeFunds

	if s.recommender != nil {
		recs, err := s.recommender.BudgetUnderuse(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		card.Recommendations = recs
	}

	return card, nil
}
