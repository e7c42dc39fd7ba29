package services

import (
	"context"
	"errors"
	"testing"

	"finhub/internal/core"
)

func newTransactionService(store *memStore, year, month, day int) *TransactionService {
	s := NewTransactionService(store, store)
	s.now = fixedNow(year, month, day)
	return s
}

func TestTransactionSignFollowsCategory(t *testing.T) {
	store := newMemStore()
	salary := store.seedCategory(1, "Зарплата", core.Income, true)
	food := store.seedCategory(1, "Продукты", core.Expense, true)
	s := newTransactionService(store, 2024, 12, 10)
	ctx := context.Background()

	// Expense stored negative even when passed positive.
	exp, err := s.Create(ctx, 1, food.ID, core.FromRubles(1500), "продукты", core.Date{})
	if err != nil {
		t.Fatalf("Create expense: %v", err)
	}
	if exp.Amount != core.FromRubles(-1500) {
		t.Errorf("expense amount = %s, want -1500.00", exp.Amount)
	}
	if !exp.Date.Equal(core.NewDate(2024, 12, 10)) {
		t.Errorf("date = %s, want today", exp.Date.Format("2006-01-02"))
	}

	// Income stored positive even when passed negative.
	inc, err := s.Create(ctx, 1, salary.ID, core.FromRubles(-90000), "аванс", core.NewDate(2024, 12, 5))
	if err != nil {
		t.Fatalf("Create income: %v", err)
	}
	if inc.Amount != core.FromRubles(90000) {
		t.Errorf("income amount = %s, want 90000.00", inc.Amount)
	}
}

func TestTransactionCreateCategoryChecks(t *testing.T) {
	store := newMemStore()
	archived := store.seedCategory(1, "Старое", core.Expense, false)
	s := newTransactionService(store, 2024, 12, 10)
	ctx := context.Background()

	if _, err := s.Create(ctx, 1, 999, core.FromRubles(100), "x", core.Date{}); !errors.Is(err, core.ErrCategoryNotOwned) {
		t.Errorf("unknown category error = %v, want ErrCategoryNotOwned", err)
	}
	if _, err := s.Create(ctx, 1, archived.ID, core.FromRubles(100), "x", core.Date{}); !errors.Is(err, core.ErrInactiveCategory) {
		t.Errorf("inactive category error = %v, want ErrInactiveCategory", err)
	}
}

func TestTransactionUpdateAmountKeepsSign(t *testing.T) {
	store := newMemStore()
	food := store.seedCategory(1, "Продукты", core.Expense, true)
	tx := store.seedTransaction(1, food.ID, core.FromRubles(-1000), core.NewDate(2024, 12, 5))

	s := newTransactionService(store, 2024, 12, 10)
	if err := s.UpdateAmount(context.Background(), 1, tx.ID, core.FromRubles(1750)); err != nil {
		t.Fatalf("UpdateAmount: %v", err)
	}

	got, _ := store.GetTransaction(context.Background(), 1, tx.ID)
	if got.Amount != core.FromRubles(-1750) {
		t.Errorf("amount = %s, want -1750.00", got.Amount)
	}
}

func TestTransactionUpdateAbsent(t *testing.T) {
	store := newMemStore()
	s := newTransactionService(store, 2024, 12, 10)

	err := s.UpdateDescription(context.Background(), 1, 404, "nope")
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("error = %v, want ErrTransactionNotFound", err)
	}
}

func TestTransactionDeleteScopedToUser(t *testing.T) {
	store := newMemStore()
	food := store.seedCategory(1, "Продукты", core.Expense, true)
	tx := store.seedTransaction(1, food.ID, core.FromRubles(-1000), core.NewDate(2024, 12, 5))
	s := newTransactionService(store, 2024, 12, 10)
	ctx := context.Background()

	if err := s.Delete(ctx, 2, tx.ID); err == nil {
		t.Error("deleting another user's transaction should fail")
	}
	if err := s.Delete(ctx, 1, tx.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if got, _ := store.GetTransaction(ctx, 1, tx.ID); got != nil {
		t.Error("transaction should be gone")
	}
}
