package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const billColumns = `id, owner_id, description, total, participants, due_date, reminder_sent, created_at, updated_at`

func (s *Store) CreateBill(ctx context.Context, b core.Bill) error {
	participants, err := encodeJSON(nonNil(b.Participants))
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.Description, b.Total, participants, nullMillis(b.DueDate), b.ReminderSent,
		millis(b.CreatedAt), millis(b.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, ownerID, id string) (core.Bill, error) {
	row := s.queryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ? AND owner_id = ?`, id, ownerID)
	b, err := scanBill(row)
	if err != nil {
		return core.Bill{}, notFound(err)
	}
	return b, nil
}

func (s *Store) UpdateBill(ctx context.Context, b core.Bill) error {
	participants, err := encodeJSON(nonNil(b.Participants))
	if err != nil {
		return err
	}
	err = s.execOne(ctx, `UPDATE bills
		SET description = ?, total = ?, participants = ?, due_date = ?, reminder_sent = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		b.Description, b.Total, participants, nullMillis(b.DueDate), b.ReminderSent, millis(b.UpdatedAt),
		b.ID, b.OwnerID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, ownerID, id string) error {
	if err := s.execOne(ctx, `DELETE FROM bills WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}

func (s *Store) ListBills(ctx context.Context, ownerID string, limit int) ([]core.Bill, error) {
	// CASE keeps bills without a due date last in both dialects
	rows, err := s.query(ctx, `SELECT `+billColumns+` FROM bills WHERE owner_id = ?
		ORDER BY CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, created_at DESC`+limitClause(limit), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	out := make([]core.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBill(sc scanner) (core.Bill, error) {
	var (
		b                core.Bill
		participants     string
		due              sql.NullInt64
		created, updated int64
	)
	if err := sc.Scan(&b.ID, &b.OwnerID, &b.Description, &b.Total, &participants, &due, &b.ReminderSent,
		&created, &updated); err != nil {
		return core.Bill{}, err
	}
	b.DueDate = fromNullMillis(due)
	b.CreatedAt = fromMillis(created)
	b.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(participants, &b.Participants); err != nil {
		return core.Bill{}, err
	}
	return b, nil
}
