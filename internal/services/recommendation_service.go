package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"finhub/internal/core"
)

// Recommendation is one actionable funding suggestion surfaced on a
// goal card.
type Recommendation struct {
	Title           string
	Description     string
	SuggestedAmount core.Money
}

// RecommendationConfig tunes the budget underuse scan.
type RecommendationConfig struct {
	// Months is how many complete prior months must show underuse.
	Months int
	// MinAmount is the noise floor: medians below it are dropped.
	MinAmount core.Money
	// MinPercent drops medians smaller than this share of the
	// average budget, in percent.
	MinPercent float64
}

// RecommendationService detects consistently underused budgets and
// suggests redirecting the slack into goals.
type RecommendationService struct {
	budgets BudgetStore
	txs     TransactionSums
	cats    CategoryStore
	cfg     RecommendationConfig
	now     func() time.Time
}

func NewRecommendationService(budgets BudgetStore, txs TransactionSums, cats CategoryStore, cfg RecommendationConfig) *RecommendationService {
	if cfg.Months <= 0 {
		cfg.Months = 3
	}
	return &RecommendationService{
		budgets: budgets,
		txs:     txs,
		cats:    cats,
		cfg:     cfg,
		now:     time.Now,
	}
}

// maxRecommendations caps how many suggestions a single scan returns.
const maxRecommendations = 3

// BudgetUnderuse scans the last complete months before today and
// returns up to three suggestions, largest median underuse first.
//
// A category qualifies only when every scanned month had a monthly
// budget and spent strictly less than planned in each of them. The
// suggested amount is the median underuse, which shrugs off a single
// unusually cheap month.
func (s *RecommendationService) BudgetUnderuse(ctx context.Context, userID int64, today core.Date) ([]Recommendation, error) {
	if today.IsZero() {
		today = core.DateOf(s.now())
	}

	starts := make([]core.Date, 0, s.cfg.Months)
	cursor := core.MonthStart(today)
	for i := 0; i < s.cfg.Months; i++ {
		cursor = core.PrevMonthStart(cursor)
		starts = append(starts, cursor)
	}

	budgets, err := s.budgets.ListMonthlyBudgetsByStart(ctx, userID, starts)
	if err != nil {
		return nil, fmt.Errorf("list monthly budgets: %w", err)
	}

	// Group the months' budgets per category; categories missing a
	// budget in any month are out.
	byCategory := make(map[int64][]core.Budget)
	for _, b := range budgets {
		byCategory[b.CategoryID] = append(byCategory[b.CategoryID], b)
	}

	type candidate struct {
		categoryID int64
		median     core.Money
		avgBudget  core.Money
	}
	var candidates []candidate

	for categoryID, months := range byCategory {
		if len(months) < s.cfg.Months {
			continue
		}

		underuses := make([]core.Money, 0, len(months))
		var budgetTotal core.Money
		qualified := true
		for _, b := range months {
			spent, err := s.txs.SumCategoryExpenses(ctx, userID, categoryID, b.StartDate, b.EndDate)
			if err != nil {
				return nil, fmt.Errorf("sum category expenses: %w", err)
			}
			underuse := b.Amount.Sub(spent)
			if !underuse.GreaterThan(core.Money{}) {
				qualified = false
				break
			}
			underuses = append(underuses, underuse)
			budgetTotal = budgetTotal.Add(b.Amount)
		}
		if !qualified {
			continue
		}

		median := medianMoney(underuses)
		avgBudget := budgetTotal.DivRound(int64(len(months)))

		if median.Kopecks < s.cfg.MinAmount.Kopecks {
			continue
		}
		if avgBudget.Kopecks > 0 {
			share := float64(median.Kopecks) / float64(avgBudget.Kopecks) * 100
			if share < s.cfg.MinPercent {
				continue
			}
		}

		candidates = append(candidates, candidate{
			categoryID: categoryID,
			median:     median,
			avgBudget:  avgBudget,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].median.Kopecks != candidates[j].median.Kopecks {
			return candidates[i].median.Kopecks > candidates[j].median.Kopecks
		}
		return candidates[i].categoryID < candidates[j].categoryID
	})
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		cat, err := s.cats.GetCategory(ctx, userID, c.categoryID)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		name := fmt.Sprintf("категория #%d", c.categoryID)
		if cat != nil {
			name = cat.Name
		}
		recs = append(recs, Recommendation{
			Title: "Потенциальный резерв из бюджета",
			Description: fmt.Sprintf(
				"По категории «%s» за последние %d мес. стабильно остаётся около %s ₽. Можно направить эту сумму на цель.",
				name, s.cfg.Months, c.median.String()),
			SuggestedAmount: c.median,
		})
	}

	if len(recs) > 0 {
		slog.DebugContext(ctx, "Budget underuse scan finished",
			"user_id", userID,
			"candidates", len(recs))
	}
	return recs, nil
}

// medianMoney returns the median of the values, averaging the two
// middle elements for even counts. The input is not modified.
func medianMoney(values []core.Money) core.Money {
	if len(values) == 0 {
		return core.Money{}
	}
	sorted := make([]int64, len(values))
	for i, v := range values {
		sorted[i] = v.Kopecks
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return core.Money{Kopecks: sorted[mid]}
	}
	sum := sorted[mid-1] + sorted[mid]
	half := sum / 2
	if sum%2 != 0 {
		half++
	}
	return core.Money{Kopecks: half}
}
