package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finhub/internal/core"
)

// TransactionService records and edits cash movements. The sign of a
// stored amount always follows the category type: expenses are
// negative, income positive, regardless of how the caller passed the
// amount in.
type TransactionService struct {
	txs  TransactionStore
	cats CategoryStore
	now  func() time.Time
}

func NewTransactionService(txs TransactionStore, cats CategoryStore) *TransactionService {
	return &TransactionService{
		txs:  txs,
		cats: cats,
		now:  time.Now,
	}
}

// Create records a transaction. A zero date means today. Returns
// core.ErrCategoryNotOwned when the category does not belong to the
// user and core.ErrInactiveCategory for archived categories.
func (s *TransactionService) Create(ctx context.Context, userID, categoryID int64, amount core.Money, description string, date core.Date) (core.Transaction, error) {
	cat, err := s.cats.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get category: %w", err)
	}
	if cat == nil {
		return core.Transaction{}, core.ErrCategoryNotOwned
	}
	if !cat.IsActive {
		return core.Transaction{}, core.ErrInactiveCategory
	}

	signed := amount.Abs()
	if cat.Type == core.Expense {
		signed = signed.Neg()
	}
	if date.IsZero() {
		date = core.DateOf(s.now())
	}

	t := core.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      signed,
		Description: description,
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.txs.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", created.ID,
		"user_id", userID,
		"category_id", categoryID,
		"amount", created.Amount.String())
	return created, nil
}

// Get returns the user's transaction, or nil when absent.
func (s *TransactionService) Get(ctx context.Context, userID, id int64) (*core.Transaction, error) {
	return s.txs.GetTransaction(ctx, userID, id)
}

// List returns the user's transactions in [from, toExcl).
func (s *TransactionService) List(ctx context.Context, userID int64, from, toExcl core.Date) ([]core.Transaction, error) {
	return s.txs.ListTransactions(ctx, userID, from, toExcl)
}

// UpdateDate moves a transaction to another date. Returns nil-and-nil
// semantics via the store: absent transactions surface as
// sql.ErrNoRows from UpdateTransaction.
func (s *TransactionService) UpdateDate(ctx context.Context, userID, id int64, date core.Date) error {
	return s.update(ctx, userID, id, func(t *core.Transaction) {
		t.Date = date
	}, "date", date.String())
}

// UpdateAmount changes the absolute amount while preserving the sign
// the category dictates.
func (s *TransactionService) UpdateAmount(ctx context.Context, userID, id int64, amount core.Money) error {
	return s.update(ctx, userID, id, func(t *core.Transaction) {
		signed := amount.Abs()
		if t.Amount.IsNegative() {
			signed = signed.Neg()
		}
		t.Amount = signed
	}, "amount", amount.Abs().String())
}

// UpdateDescription replaces the description text.
func (s *TransactionService) UpdateDescription(ctx context.Context, userID, id int64, description string) error {
	return s.update(ctx, userID, id, func(t *core.Transaction) {
		t.Description = description
	}, "description", description)
}

func (s *TransactionService) update(ctx context.Context, userID, id int64, mutate func(*core.Transaction), field, value string) error {
	t, err := s.txs.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if t == nil {
		return core.ErrTransactionNotFound
	}
	mutate(t)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.txs.UpdateTransaction(ctx, *t); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction updated",
		"transaction_id", id,
		"user_id", userID,
		"field", field,
		"value", value)
	return nil
}

// Delete removes the user's transaction.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.txs.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted",
		"transaction_id", id,
		"user_id", userID)
	return nil
}
