package services

import (
	"context"
	"log/slog"

	"finhub/internal/core"
)

// CategoryService manages the user's category registry.
type CategoryService struct {
	cats CategoryStore
}

func NewCategoryService(cats CategoryStore) *CategoryService {
	return &CategoryService{cats: cats}
}

// Create validates and persists a new active category. Duplicate
// name+type pairs surface as core.ErrCategoryExists.
func (s *CategoryService) Create(ctx context.Context, userID int64, name string, categoryType core.CategoryType) (core.Category, error) {
	c := core.Category{
		UserID:   userID,
		Name:     name,
		Type:     categoryType,
		IsActive: true,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.cats.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category created",
		"category_id", created.ID,
		"user_id", userID,
		"type", string(categoryType))
	return created, nil
}

// Get returns the user's category, or nil when absent.
func (s *CategoryService) Get(ctx context.Context, userID, id int64) (*core.Category, error) {
	return s.cats.GetCategory(ctx, userID, id)
}

// List returns every category of the user, active or not.
func (s *CategoryService) List(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.cats.ListCategories(ctx, userID)
}

// ListActiveExpense returns the active expense categories, the only
// kind budgets can attach to.
func (s *CategoryService) ListActiveExpense(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.cats.ListActiveExpenseCategories(ctx, userID)
}
