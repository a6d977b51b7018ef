package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

// ExpenseLedger is the storage an ExpenseService needs.
type ExpenseLedger interface {
	store.ExpenseStore
	store.TransactionStore
}

type (
	CreateExpenseInput struct {
		Title     string
		Amount    decimal.Decimal
		Category  string
		Type      core.ExpenseType
		Date      *time.Time
		Notes     string
		SplitWith []core.Split
	}

	// UpdateExpenseInput is a partial update; nil fields are left unchanged.
	UpdateExpenseInput struct {
		Title     *string
		Amount    *decimal.Decimal
		Category  *string
		Type      *core.ExpenseType
		Date      *time.Time
		Notes     *string
		SplitWith *[]core.Split
	}

	// ExpenseQuery filters by equality on category and type and by an
	// inclusive day range on the expense date.
	ExpenseQuery struct {
		Category string
		Type     core.ExpenseType
		Start    *time.Time
		End      *time.Time
	}
)

// ExpenseService keeps every expense mirrored by exactly one debit
// transaction. The two writes are not atomic: a failure between them is
// logged and leaves the ledger behind the expense.
type ExpenseService struct {
	ledger ExpenseLedger
	loc    *time.Location
	logger *log.Logger
	events *log.StructuredLogger
	clock  clock
}

func NewExpenseService(ledger ExpenseLedger, loc *time.Location, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		ledger: ledger,
		loc:    loc,
		logger: logger,
		events: log.NewStructuredLogger(logger),
	}
}

// Create saves the expense and its mirrored debit transaction.
func (s *ExpenseService) Create(ctx context.Context, ownerID string, in CreateExpenseInput) (core.Expense, error) {
	now := s.clock.now()
	e := core.Expense{
		ID:        newID(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(in.Title),
		Amount:    in.Amount,
		Category:  strings.TrimSpace(in.Category),
		Type:      in.Type,
		Date:      now,
		Notes:     in.Notes,
		SplitWith: in.SplitWith,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if e.Category == "" {
		e.Category = core.DefaultCategory
	}
	if e.Type == "" {
		e.Type = core.Personal
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if e.SplitWith == nil {
		e.SplitWith = []core.Split{}
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.ledger.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	tx := e.Mirror()
	tx.ID = newID()
	tx.CreatedAt = now
	if err := s.ledger.CreateTransaction(ctx, tx); err != nil {
		s.events.LogError(ctx, "Expense saved without its ledger transaction", err,
			log.ComponentExpense, log.OpCreate, log.LogFields{log.FieldExpenseID: e.ID})
		return core.Expense{}, fmt.Errorf("mirror expense %s: %w", e.ID, err)
	}

	s.events.LogExpenseCreated(ctx, ownerID, e.ID, e.Amount, e.Category)
	return e, nil
}

// Update applies in and re-syncs the mirrored transactions in place.
func (s *ExpenseService) Update(ctx context.Context, ownerID, id string, in UpdateExpenseInput) (core.Expense, error) {
	e, err := s.ledger.GetExpense(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, lookupErr(err, "get expense", "Expense not found")
	}

	if in.Title != nil {
		e.Title = strings.TrimSpace(*in.Title)
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
		if e.Category == "" {
			e.Category = core.DefaultCategory
		}
	}
	if in.Type != nil {
		e.Type = *in.Type
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if in.SplitWith != nil {
		e.SplitWith = *in.SplitWith
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.UpdatedAt = s.clock.now()

	if err := s.ledger.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, lookupErr(err, "update expense", "Expense not found")
	}

	n, err := s.ledger.SyncExpenseTransactions(ctx, ownerID, e.ID, e.Sync())
	if err != nil {
		return core.Expense{}, fmt.Errorf("sync transactions of expense %s: %w", e.ID, err)
	}
	if n == 0 {
		s.logger.WarnContext(ctx, "Expense has no mirrored transaction",
			log.FieldExpenseID, e.ID, log.FieldOwnerID, ownerID)
	}

	return e, nil
}

// Delete removes the expense and exactly the transactions mirrored from it.
func (s *ExpenseService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.ledger.GetExpense(ctx, ownerID, id); err != nil {
		return lookupErr(err, "get expense", "Expense not found")
	}
	if err := s.ledger.DeleteExpense(ctx, ownerID, id); err != nil {
		return lookupErr(err, "delete expense", "Expense not found")
	}

	n, err := s.ledger.DeleteExpenseTransactions(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transactions of expense %s: %w", id, err)
	}
	s.logger.DebugContext(ctx, "Expense deleted", log.FieldExpenseID, id, log.FieldCount, n)
	return nil
}

// List returns the owner's expenses newest first.
func (s *ExpenseService) List(ctx context.Context, ownerID string, q ExpenseQuery) ([]core.Expense, error) {
	from, to := dayRange(q.Start, q.End, s.loc)
	expenses, err := s.ledger.ListExpenses(ctx, ownerID, store.ExpenseFilter{
		Category: q.Category,
		Type:     q.Type,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}
