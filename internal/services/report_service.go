package services

import (
	"context"
	"fmt"
	"sort"

	"finhub/internal/core"
)

// CategoryTotal is one report line: a category and its month total.
// Totals are positive for both income and expense lines.
type CategoryTotal struct {
	CategoryID int64
	Name       string
	Total      core.Money
}

// MonthlyReport breaks one calendar month down by category.
type MonthlyReport struct {
	Period       string // "Август 2026"
	Income       []CategoryTotal
	Expenses     []CategoryTotal
	IncomeTotal  core.Money
	ExpenseTotal core.Money // positive
	Balance      core.Money // income minus expenses
}

// ReportService builds per-month category breakdowns.
type ReportService struct {
	txs  TransactionStore
	cats CategoryStore
}

func NewReportService(txs TransactionStore, cats CategoryStore) *ReportService {
	return &ReportService{txs: txs, cats: cats}
}

var ruMonths = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// PeriodName renders the month the report covers, in Russian.
func PeriodName(month core.Date) string {
	return fmt.Sprintf("%s %d", ruMonths[int(month.Month())-1], month.Year())
}

// Monthly builds the report for the month containing the given date.
func (s *ReportService) Monthly(ctx context.Context, userID int64, month core.Date) (MonthlyReport, error) {
	start := core.MonthStart(month)
	end := core.NextMonthStart(month)

	transactions, err := s.txs.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list transactions: %w", err)
	}
	categories, err := s.cats.ListCategories(ctx, userID)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	income := make(map[int64]core.Money)
	expenses := make(map[int64]core.Money)
	report := MonthlyReport{Period: PeriodName(month)}
	for _, t := range transactions {
		if t.IsIncome() {
			income[t.CategoryID] = income[t.CategoryID].Add(t.Amount)
			report.IncomeTotal = report.IncomeTotal.Add(t.Amount)
		} else {
			abs := t.Amount.Abs()
			expenses[t.CategoryID] = expenses[t.CategoryID].Add(abs)
			report.ExpenseTotal = report.ExpenseTotal.Add(abs)
		}
	}
	report.Balance = report.IncomeTotal.Sub(report.ExpenseTotal)
	report.Income = sortedTotals(income, names)
	report.Expenses = sortedTotals(expenses, names)
	return report, nil
}

// sortedTotals flattens a per-category map into lines, largest first.
func sortedTotals(totals map[int64]core.Money, names map[int64]string) []CategoryTotal {
	lines := make([]CategoryTotal, 0, len(totals))
	for id, total := range totals {
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("категория #%d", id)
		}
		lines = append(lines, CategoryTotal{CategoryID: id, Name: name, Total: total})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Total.Kopecks != lines[j].Total.Kopecks {
			return lines[i].Total.Kopecks > lines[j].Total.Kopecks
		}
		return lines[i].CategoryID < lines[j].CategoryID
	})
	return lines
}
