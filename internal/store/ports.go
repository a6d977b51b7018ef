// Package store defines the persistence ports used by the services.
// Every read and write is scoped to an owner: records of another owner are
// reported as ErrNotFound.
package store

import (
	"context"
	"errors"
	"time"

	"spendwise/internal/core"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type (
	ExpenseFilter struct {
		Category string
		Type     core.ExpenseType
		From     *time.Time
		To       *time.Time
		Limit    int
	}

	TransactionFilter struct {
		Category string
		From     *time.Time
		To       *time.Time
		Limit    int
	}

	NotificationFilter struct {
		UnreadOnly bool
		Limit      int
	}
)

// Ports for the persisted records.
type (
	// ExpenseStore lists expenses newest first (by date, then creation).
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.Expense) error
		GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, ownerID, id string) error
		ListExpenses(ctx context.Context, ownerID string, f ExpenseFilter) ([]core.Expense, error)
	}

	// TransactionStore lists transactions newest first.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) error
		GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
		UpdateTransactionNotes(ctx context.Context, ownerID, id, notes string) error
		ListTransactions(ctx context.Context, ownerID string, f TransactionFilter) ([]core.Transaction, error)
		// SyncExpenseTransactions applies s to every transaction mirrored from
		// expenseID and reports how many were updated.
		SyncExpenseTransactions(ctx context.Context, ownerID, expenseID string, s core.TransactionSync) (int, error)
		DeleteExpenseTransactions(ctx context.Context, ownerID, expenseID string) (int, error)
		DeleteBillTransactions(ctx context.Context, ownerID, billID string) (int, error)
	}

	// BillStore lists bills by due date ascending, bills without a due date last.
	BillStore interface {
		CreateBill(ctx context.Context, b core.Bill) error
		GetBill(ctx context.Context, ownerID, id string) (core.Bill, error)
		UpdateBill(ctx context.Context, b core.Bill) error
		DeleteBill(ctx context.Context, ownerID, id string) error
		ListBills(ctx context.Context, ownerID string, limit int) ([]core.Bill, error)
	}

	// SavingsStore lists goals newest first.
	SavingsStore interface {
		CreateGoal(ctx context.Context, g core.SavingsGoal) error
		GetGoal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error)
		UpdateGoal(ctx context.Context, g core.SavingsGoal) error
		DeleteGoal(ctx context.Context, ownerID, id string) error
		ListGoals(ctx context.Context, ownerID string, limit int) ([]core.SavingsGoal, error)
	}

	// NotificationStore lists notifications newest first.
	NotificationStore interface {
		// CreateNotifications inserts all of ns or none of them.
		CreateNotifications(ctx context.Context, ns []core.Notification) error
		MarkNotificationRead(ctx context.Context, ownerID, id string) (core.Notification, error)
		ListNotifications(ctx context.Context, ownerID string, f NotificationFilter) ([]core.Notification, error)
	}

	// InsightStore keeps at most one snapshot per owner and period.
	InsightStore interface {
		GetSnapshot(ctx context.Context, ownerID string, period core.Period) (core.InsightSnapshot, error)
		UpsertSnapshot(ctx context.Context, s core.InsightSnapshot) error
	}

	// UserStore returns ErrConflict when an email is already registered.
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) error
		GetUser(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
	}

	Store interface {
		ExpenseStore
		TransactionStore
		BillStore
		SavingsStore
		NotificationStore
		InsightStore
		UserStore
		Close() error
	}
)
