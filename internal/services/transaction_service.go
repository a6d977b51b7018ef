package services

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

// TransactionQuery filters by category and an inclusive day range on the
// creation time.
type TransactionQuery struct {
	Category string
	Start    *time.Time
	End      *time.Time
}

// TransactionService exposes the ledger read-only, except for notes.
type TransactionService struct {
	ledger store.TransactionStore
	loc    *time.Location
}

func NewTransactionService(ledger store.TransactionStore, loc *time.Location) *TransactionService {
	return &TransactionService{ledger: ledger, loc: loc}
}

func (s *TransactionService) List(ctx context.Context, ownerID string, q TransactionQuery) ([]core.Transaction, error) {
	from, to := dayRange(q.Start, q.End, s.loc)
	txs, err := s.ledger.ListTransactions(ctx, ownerID, store.TransactionFilter{
		Category: q.Category,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// UpdateNotes changes the only user-editable field of a transaction.
func (s *TransactionService) UpdateNotes(ctx context.Context, ownerID, id, notes string) (core.Transaction, error) {
	if err := s.ledger.UpdateTransactionNotes(ctx, ownerID, id, notes); err != nil {
		return core.Transaction{}, lookupErr(err, "update transaction", "Transaction not found")
	}
	tx, err := s.ledger.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, lookupErr(err, "get transaction", "Transaction not found")
	}
	return tx, nil
}
