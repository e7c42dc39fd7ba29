package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finhub/internal/core"
)

// CreateGoal inserts a goal and returns it with its assigned id.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	var deadline sql.NullString
	if !g.Deadline.IsZero() {
		deadline = sql.NullString{String: fmtDate(g.Deadline), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (user_id, title, target_amount_kopecks, deadline, status)
		 VALUES (?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.TargetAmount.Kopecks, deadline, string(g.Status))
	if isUniqueViolation(err) {
		return core.Goal{}, core.ErrGoalExists
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal insert id: %w", err)
	}
	g.ID = id
	return g, nil
}

// GetGoal returns the user's goal by id, or nil when absent.
func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id int64) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, target_amount_kopecks, deadline, status
		 FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

// ListGoals returns the user's goals, newest first.
func (r *SQLiteRepository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, target_amount_kopecks, deadline, status
		 FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// UpdateGoalStatus moves the user's goal to a new status.
func (r *SQLiteRepository) UpdateGoalStatus(ctx context.Context, userID, id int64, status core.GoalStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`, string(status), id, userID)
	if err != nil {
		return fmt.Errorf("update goal status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal status rows: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AppendGoalEntry appends one ledger entry. Entries are never updated
// or deleted afterwards; the ledger is append-only.
func (r *SQLiteRepository) AppendGoalEntry(ctx context.Context, e core.GoalLedgerEntry) (core.GoalLedgerEntry, error) {
	var linked sql.NullInt64
	if e.LinkedTransactionID != 0 {
		linked = sql.NullInt64{Int64: e.LinkedTransactionID, Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goal_ledger_entries (goal_id, occurred_at, amount_kopecks, entry_type, comment, linked_transaction_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.GoalID, fmtDate(e.OccurredAt), e.Amount.Kopecks, string(e.EntryType), e.Comment, linked)
	if err != nil {
		return core.GoalLedgerEntry{}, fmt.Errorf("append goal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.GoalLedgerEntry{}, fmt.Errorf("goal entry insert id: %w", err)
	}
	e.ID = id
	return e, nil
}

// SumGoalEntries returns the raw running sum of a goal's ledger.
// No clamping here: display flooring is the service's concern.
func (r *SQLiteRepository) SumGoalEntries(ctx context.Context, userID, goalID int64) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(e.amount_kopecks), 0)
		 FROM goal_ledger_entries e
		 JOIN goals g ON g.id = e.goal_id
		 WHERE e.goal_id = ? AND g.user_id = ?`, goalID, userID).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum goal entries: %w", err)
	}
	return core.Money{Kopecks: total}, nil
}

// SumGoalEntriesInRange returns the positive deposit total and the
// negative withdraw total of a goal's entries in the half-open
// [from, toExcl) window.
func (r *SQLiteRepository) SumGoalEntriesInRange(ctx context.Context, goalID int64, from, toExcl core.Date) (deposits, withdraws core.Money, err error) {
	var dep, wd int64
	err = r.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN amount_kopecks > 0 THEN amount_kopecks ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN amount_kopecks < 0 THEN amount_kopecks ELSE 0 END), 0)
		 FROM goal_ledger_entries
		 WHERE goal_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		goalID, fmtDate(from), fmtDate(toExcl)).Scan(&dep, &wd)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum goal entries in range: %w", err)
	}
	return core.Money{Kopecks: dep}, core.Money{Kopecks: wd}, nil
}

// SumUserGoalAllocations returns the net of every ledger entry across
// all the user's goals in the half-open [from, toExcl) window. This is
// the reservation term of the free-funds computation.
func (r *SQLiteRepository) SumUserGoalAllocations(ctx context.Context, userID int64, from, toExcl core.Date) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(e.amount_kopecks), 0)
		 FROM goal_ledger_entries e
		 JOIN goals g ON g.id = e.goal_id
		 WHERE g.user_id = ? AND e.occurred_at >= ? AND e.occurred_at < ?`,
		userID, fmtDate(from), fmtDate(toExcl)).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum goal allocations: %w", err)
	}
	return core.Money{Kopecks: total}, nil
}

// ListRecentGoalEntries returns the newest ledger entries of a goal,
// ordered by occurrence date then id, both descending.
func (r *SQLiteRepository) ListRecentGoalEntries(ctx context.Context, userID, goalID int64, limit int) ([]core.GoalLedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.goal_id, e.occurred_at, e.amount_kopecks, e.entry_type, e.comment, e.linked_transaction_id
		 FROM goal_ledger_entries e
		 JOIN goals g ON g.id = e.goal_id
		 WHERE e.goal_id = ? AND g.user_id = ?
		 ORDER BY e.occurred_at DESC, e.id DESC LIMIT ?`,
		goalID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent goal entries: %w", err)
	}
	defer rows.Close()

	var out []core.GoalLedgerEntry
	for rows.Next() {
		var (
			e       core.GoalLedgerEntry
			kopecks int64
			date    string
			etype   string
			linked  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.GoalID, &date, &kopecks, &etype, &e.Comment, &linked); err != nil {
			return nil, fmt.Errorf("scan goal entry: %w", err)
		}
		d, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		e.OccurredAt = d
		e.Amount = core.Money{Kopecks: kopecks}
		e.EntryType = core.EntryType(etype)
		if linked.Valid {
			e.LinkedTransactionID = linked.Int64
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal entries: %w", err)
	}
	return out, nil
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g        core.Goal
		kopecks  int64
		deadline sql.NullString
		status   string
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Title, &kopecks, &deadline, &status); err != nil {
		return core.Goal{}, err
	}
	g.TargetAmount = core.Money{Kopecks: kopecks}
	g.Status = core.GoalStatus(status)
	if deadline.Valid {
		d, err := parseDate(deadline.String)
		if err != nil {
			return core.Goal{}, err
		}
		g.Deadline = d
	}
	return g, nil
}
