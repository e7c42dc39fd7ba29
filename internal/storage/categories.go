package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finhub/internal/core"
)

// CreateCategory inserts a category and returns it with its assigned id.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type, icon, color, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Type), c.Icon, c.Color, c.IsActive)
	if isUniqueViolation(err) {
		return core.Category{}, core.ErrCategoryExists
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetCategory returns the user's category by id, or nil when absent.
func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, icon, color, is_active
		 FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns all of the user's categories, income first,
// then by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, icon, color, is_active
		 FROM categories WHERE user_id = ? ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

// ListActiveExpenseCategories returns the user's active expense
// categories, the population the recommendation scan walks.
func (r *SQLiteRepository) ListActiveExpenseCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, icon, color, is_active
		 FROM categories
		 WHERE user_id = ? AND type = 'expense' AND is_active = 1
		 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active expense categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c        core.Category
		ctype    string
		isActive int64
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &ctype, &c.Icon, &c.Color, &isActive); err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(ctype)
	c.IsActive = isActive != 0
	return c, nil
}

func collectCategories(rows *sql.Rows) ([]core.Category, error) {
	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}
