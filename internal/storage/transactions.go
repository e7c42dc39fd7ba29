package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finhub/internal/core"
)

// CreateTransaction inserts a transaction and returns it with its id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount_kopecks, date, description)
		 VALUES (?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.Amount.Kopecks, fmtDate(t.Date), t.Description)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id
	return t, nil
}

// GetTransaction returns the user's transaction by id, or nil when absent.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, category_id, amount_kopecks, date, description
		 FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// UpdateTransaction rewrites the mutable fields of a transaction
// (amount, date, description) for an administrative edit.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount_kopecks = ?, date = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		t.Amount.Kopecks, fmtDate(t.Date), t.Description, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTransaction removes the user's transaction by id.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SumCategoryExpenses returns the positive total of expense
// transactions for one category inside the inclusive [from, to]
// window. Zero, not an error, when nothing matches.
func (r *SQLiteRepository) SumCategoryExpenses(ctx context.Context, userID, categoryID int64, from, to core.Date) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_kopecks), 0)
		 FROM transactions
		 WHERE user_id = ? AND category_id = ? AND amount_kopecks < 0
		   AND date >= ? AND date <= ?`,
		userID, categoryID, fmtDate(from), fmtDate(to)).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum category expenses: %w", err)
	}
	return core.Money{Kopecks: total}.Abs(), nil
}

// SumIncome returns the total of positive transactions in the
// half-open [from, toExcl) window.
func (r *SQLiteRepository) SumIncome(ctx context.Context, userID int64, from, toExcl core.Date) (core.Money, error) {
	return r.sumSigned(ctx, userID, from, toExcl, ">")
}

// SumExpenses returns the positive total of negative transactions in
// the half-open [from, toExcl) window.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID int64, from, toExcl core.Date) (core.Money, error) {
	m, err := r.sumSigned(ctx, userID, from, toExcl, "<")
	return m.Abs(), err
}

func (r *SQLiteRepository) sumSigned(ctx context.Context, userID int64, from, toExcl core.Date, cmp string) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_kopecks), 0)
		 FROM transactions
		 WHERE user_id = ? AND amount_kopecks `+cmp+` 0
		   AND date >= ? AND date < ?`,
		userID, fmtDate(from), fmtDate(toExcl)).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum transactions: %w", err)
	}
	return core.Money{Kopecks: total}, nil
}

// ListTransactions returns the user's transactions in the half-open
// [from, toExcl) window, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, from, toExcl core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, amount_kopecks, date, description
		 FROM transactions
		 WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date DESC, id DESC`,
		userID, fmtDate(from), fmtDate(toExcl))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		kopecks int64
		date    string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &kopecks, &date, &t.Description); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.Money{Kopecks: kopecks}
	t.Date = d
	return t, nil
}
