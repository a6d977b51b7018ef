package sqlstore

import (
	"context"
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const transactionColumns = `id, owner_id, source_expense_id, source_bill_id, direction, amount, category, participant_ids, notes, created_at`

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	participants, err := encodeJSON(nonNil(tx.ParticipantIDs))
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.SourceExpenseID, tx.SourceBillID, string(tx.Direction), tx.Amount, tx.Category,
		participants, tx.Notes, millis(tx.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := s.queryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err)
	}
	return tx, nil
}

func (s *Store) UpdateTransactionNotes(ctx context.Context, ownerID, id, notes string) error {
	if err := s.execOne(ctx, `UPDATE transactions SET notes = ? WHERE id = ? AND owner_id = ?`, notes, id, ownerID); err != nil {
		return fmt.Errorf("update transaction notes: %w", err)
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string, f store.TransactionFilter) ([]core.Transaction, error) {
	w := &where{}
	w.add("owner_id = ?", ownerID)
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.From != nil {
		w.add("created_at >= ?", millis(*f.From))
	}
	if f.To != nil {
		w.add("created_at <= ?", millis(*f.To))
	}

	rows, err := s.query(ctx, `SELECT `+transactionColumns+` FROM transactions`+w.String()+
		` ORDER BY created_at DESC, id DESC`+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) SyncExpenseTransactions(ctx context.Context, ownerID, expenseID string, ts core.TransactionSync) (int, error) {
	participants, err := encodeJSON(nonNil(ts.ParticipantIDs))
	if err != nil {
		return 0, err
	}
	n, err := s.execCount(ctx, `UPDATE transactions
		SET amount = ?, category = ?, notes = ?, participant_ids = ?
		WHERE owner_id = ? AND source_expense_id = ?`,
		ts.Amount, ts.Category, ts.Notes, participants, ownerID, expenseID)
	if err != nil {
		return 0, fmt.Errorf("sync expense transactions: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteExpenseTransactions(ctx context.Context, ownerID, expenseID string) (int, error) {
	n, err := s.execCount(ctx, `DELETE FROM transactions WHERE owner_id = ? AND source_expense_id = ?`, ownerID, expenseID)
	if err != nil {
		return 0, fmt.Errorf("delete expense transactions: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteBillTransactions(ctx context.Context, ownerID, billID string) (int, error) {
	n, err := s.execCount(ctx, `DELETE FROM transactions WHERE owner_id = ? AND source_bill_id = ?`, ownerID, billID)
	if err != nil {
		return 0, fmt.Errorf("delete bill transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(sc scanner) (core.Transaction, error) {
	var (
		tx           core.Transaction
		direction    string
		participants string
		created      int64
	)
	if err := sc.Scan(&tx.ID, &tx.OwnerID, &tx.SourceExpenseID, &tx.SourceBillID, &direction, &tx.Amount,
		&tx.Category, &participants, &tx.Notes, &created); err != nil {
		return core.Transaction{}, err
	}
	tx.Direction = core.Direction(direction)
	tx.CreatedAt = fromMillis(created)
	if err := decodeJSON(participants, &tx.ParticipantIDs); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
