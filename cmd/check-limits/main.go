// check-limits is a one-shot diagnostic: it prints the plan-fact state
// of every active budget, the free funds of the current month, and the
// current funding recommendations for one user, then exits. Useful for
// poking at a database without waiting for the worker's next tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"finhub/internal/config"
	"finhub/internal/core"
	"finhub/internal/services"
	"finhub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Int64("user", 0, "user id to inspect (0 = every user with active budgets)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "configuration invalid:", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open storage:", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	budgetService := services.NewBudgetService(repo, repo, repo)
	recommendationService := services.NewRecommendationService(repo, repo, repo, services.RecommendationConfig{
		Months:     cfg.RecommendMonths,
		MinAmount:  core.FromRubles(cfg.RecommendMinRubles),
		MinPercent: cfg.RecommendMinPercent,
	})
	goalService := services.NewGoalService(repo, repo, recommendationService)

	users := []int64{*userID}
	if *userID == 0 {
		users, err = repo.ListUsersWithActiveBudgets(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list users:", err)
			os.Exit(1)
		}
	}

	today := core.DateOf(time.Now())
	for _, id := range users {
		if err := dumpUser(ctx, budgetService, goalService, recommendationService, id, today, cfg.WarnPercentage); err != nil {
			fmt.Fprintf(os.Stderr, "user %d: %v\n", id, err)
			os.Exit(1)
		}
	}
}

func dumpUser(ctx context.Context, budgets *services.BudgetService, goals *services.GoalService, recommender *services.RecommendationService, userID int64, today core.Date, warnPct float64) error {
	fmt.Printf("=== user %d (as of %s) ===\n", userID, today.Format("2006-01-02"))

	active, err := budgets.ListActive(ctx, userID)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	if len(active) == 0 {
		fmt.Println("no active budgets")
	}
	for _, b := range active {
		m, err := budgets.Metrics(ctx, b, today)
		if err != nil {
			return fmt.Errorf("budget %d metrics: %w", b.ID, err)
		}
		status := "ok"
		switch {
		case m.IsOverspent:
			status = "OVERSPENT"
		case m.SpentPercentage >= warnPct:
			status = "warning"
		}
		fmt.Printf("budget %d (category %d, %s..%s): %s of %s spent (%.1f%%), remaining %s, %d/%d days left, %s/day [%s]\n",
			b.ID, b.CategoryID,
			b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"),
			m.Spent, b.Amount, m.SpentPercentage,
			m.Remaining, m.DaysRemaining, m.DaysTotal, m.DailyBudgetRemaining, status)
	}

	free, err := goals.FreeFundsForMonth(ctx, userID, today)
	if err != nil {
		return fmt.Errorf("free funds: %w", err)
	}
	fmt.Printf("free funds this month: %s\n", free)

	list, err := goals.ListGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	for _, g := range list {
		if g.Status != core.GoalActive {
			continue
		}
		balance, err := goals.Balance(ctx, userID, g.ID)
		if err != nil {
			return fmt.Errorf("goal %d balance: %w", g.ID, err)
		}
		fmt.Printf("goal %d %q: %s of %s\n", g.ID, g.Title, balance, g.TargetAmount)
	}

	recs, err := recommender.BudgetUnderuse(ctx, userID, today)
	if err != nil {
		return fmt.Errorf("recommendations: %w", err)
	}
	for _, r := range recs {
		fmt.Printf("recommendation: %s (%s)\n", r.Description, r.SuggestedAmount)
	}

	fmt.Println()
	return nil
}
