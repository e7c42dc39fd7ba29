package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finhub/internal/core"
)

// CreateBudget inserts a budget. A uniqueness violation on the
// (category, start, end, user) constraint is reported as the same
// overlap error the synchronous validation uses, so a lost
// check-then-act race surfaces with the familiar vocabulary.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, amount_kopecks, period_type, start_date, end_date, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.Kopecks, string(b.PeriodType),
		fmtDate(b.StartDate), fmtDate(b.EndDate), b.IsActive)
	if isUniqueViolation(err) {
		return core.Budget{}, core.ErrBudgetPeriodOverlap
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	b.ID = id
	return b, nil
}

// UpdateBudget rewrites the mutable fields of a budget.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets
		 SET amount_kopecks = ?, period_type = ?, start_date = ?, end_date = ?,
		     is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		b.Amount.Kopecks, string(b.PeriodType), fmtDate(b.StartDate), fmtDate(b.EndDate),
		b.IsActive, b.ID, b.UserID)
	if isUniqueViolation(err) {
		return core.ErrBudgetPeriodOverlap
	}
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget rows: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetBudget returns the user's budget by id, or nil when absent.
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id int64) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx, selectBudget+` WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

// ListActiveBudgets returns the user's active budgets, newest period first.
func (r *SQLiteRepository) ListActiveBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		selectBudget+` WHERE user_id = ? AND is_active = 1 ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// ListActiveBudgetsForCategory returns the user's active budgets for
// one category, the set the overlap validation checks against.
func (r *SQLiteRepository) ListActiveBudgetsForCategory(ctx context.Context, userID, categoryID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		selectBudget+` WHERE user_id = ? AND category_id = ? AND is_active = 1 ORDER BY start_date DESC`,
		userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list budgets for category: %w", err)
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// FindCurrentBudget returns the active budget whose window contains
// the date, or nil when none does. Overlapping windows are a data
// anomaly the write path prevents; if one slips through via a race the
// first match by store order wins. Whether a different tie-break (for
// example latest start date) is wanted is an open product question.
func (r *SQLiteRepository) FindCurrentBudget(ctx context.Context, userID, categoryID int64, date core.Date) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		selectBudget+` WHERE user_id = ? AND category_id = ? AND is_active = 1
		   AND start_date <= ? AND end_date >= ?
		 ORDER BY start_date DESC LIMIT 1`,
		userID, categoryID, fmtDate(date), fmtDate(date))
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find current budget: %w", err)
	}
	return &b, nil
}

// ListMonthlyBudgetsByStart returns the user's active monthly budgets
// whose start date is one of the given month starts.
func (r *SQLiteRepository) ListMonthlyBudgetsByStart(ctx context.Context, userID int64, starts []core.Date) ([]core.Budget, error) {
	if len(starts) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(starts)), ",")
	args := []any{userID}
	for _, s := range starts {
		args = append(args, fmtDate(s))
	}
	rows, err := r.db.QueryContext(ctx,
		selectBudget+` WHERE user_id = ? AND is_active = 1 AND period_type = 'monthly'
		   AND start_date IN (`+placeholders+`) ORDER BY start_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list monthly budgets: %w", err)
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// ListUsersWithActiveBudgets returns the distinct owners of active
// budgets, the population the limit-check worker scans.
func (r *SQLiteRepository) ListUsersWithActiveBudgets(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM budgets WHERE is_active = 1 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list budget users: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan budget user: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget users: %w", err)
	}
	return out, nil
}

const selectBudget = `SELECT id, user_id, category_id, amount_kopecks, period_type, start_date, end_date, is_active
 FROM budgets`

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b        core.Budget
		kopecks  int64
		period   string
		start    string
		end      string
		isActive int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &kopecks, &period, &start, &end, &isActive); err != nil {
		return core.Budget{}, err
	}
	startDate, err := parseDate(start)
	if err != nil {
		return core.Budget{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return core.Budget{}, err
	}
	b.Amount = core.Money{Kopecks: kopecks}
	b.PeriodType = core.PeriodType(period)
	b.StartDate = startDate
	b.EndDate = endDate
	b.IsActive = isActive != 0
	return b, nil
}

func collectBudgets(rows *sql.Rows) ([]core.Budget, error) {
	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}
