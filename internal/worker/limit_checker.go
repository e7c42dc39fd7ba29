// Package worker runs the periodic budget limit scan and pushes
// threshold alerts to the message broker.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finhub/internal/amqp"
	"finhub/internal/core"
	"finhub/internal/log"
	"finhub/internal/services"
)

// AlertPublisher is the broker-facing side of the checker.
// *amqp.Client satisfies it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// LimitChecker periodically walks every active budget and publishes an
// alert when spending crosses the warn threshold or the limit itself.
type LimitChecker struct {
	budgets   services.BudgetStore
	metrics   *services.BudgetService
	publisher AlertPublisher

	interval time.Duration
	warnPct  float64

	// sent de-duplicates alerts within the process lifetime so a
	// budget does not spam the queue on every tick. Restarting the
	// worker re-sends at most one alert per budget and level.
	sent map[alertKey]bool

	now func() time.Time
}

type alertKey struct {
	budgetID int64
	level    string
}

func NewLimitChecker(budgets services.BudgetStore, metrics *services.BudgetService, publisher AlertPublisher, interval time.Duration, warnPct float64) *LimitChecker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LimitChecker{
		budgets:   budgets,
		metrics:   metrics,
		publisher: publisher,
		interval:  interval,
		warnPct:   warnPct,
		sent:      make(map[alertKey]bool),
		now:       time.Now,
	}
}

// Run scans immediately, then on every tick, until the context is
// cancelled.
func (c *LimitChecker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Limit checker started",
		"interval", c.interval.String(),
		"warn_percentage", c.warnPct)

	if err := c.CheckAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Limit check failed", log.FieldError, err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Limit checker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := c.CheckAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Limit check failed", log.FieldError, err)
			}
		}
	}
}

// CheckAll runs one full scan over every user with active budgets.
// Per-budget failures are logged and skipped, a single broken budget
// must not starve the rest of the scan.
func (c *LimitChecker) CheckAll(ctx context.Context) error {
	users, err := c.budgets.ListUsersWithActiveBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budget users: %w", err)
	}

	today := core.DateOf(c.now())
	checked, alerted := 0, 0
	for _, userID := range users {
		budgets, err := c.budgets.ListActiveBudgets(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list budgets", log.FieldUserID, userID, log.FieldError, err)
			continue
		}
		for _, b := range budgets {
			if !b.Contains(today) {
				continue
			}
			checked++
			sent, err := c.checkBudget(ctx, b, today)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to check budget",
					log.FieldBudgetID, b.ID,
					log.FieldUserID, userID,
					log.FieldError, err)
				continue
			}
			if sent {
				alerted++
			}
		}
	}

	slog.InfoContext(ctx, "Limit scan finished",
		"users", len(users),
		"budgets_checked", checked,
		"alerts_sent", alerted)
	return nil
}

func (c *LimitChecker) checkBudget(ctx context.Context, b core.Budget, today core.Date) (bool, error) {
	m, err := c.metrics.Metrics(ctx, b, today)
	if err != nil {
		return false, err
	}

	var level string
	switch {
	case m.IsOverspent:
		level = amqp.LevelOverspent
	case m.SpentPercentage >= c.warnPct:
		level = amqp.LevelWarning
	default:
		return false, nil
	}

	key := alertKey{budgetID: b.ID, level: level}
	if c.sent[key] {
		return false, nil
	}

	msg := &amqp.BudgetAlertMessage{
		UserID:          b.UserID,
		BudgetID:        b.ID,
		CategoryID:      b.CategoryID,
		Level:           level,
		AmountKopecks:   b.Amount.Kopecks,
		SpentKopecks:    m.Spent.Kopecks,
		SpentPercentage: m.SpentPercentage,
	}
	if err := c.publisher.PublishBudgetAlert(ctx, msg); err != nil {
		return false, fmt.Errorf("publish alert: %w", err)
	}
	c.sent[key] = true
	return true, nil
}
