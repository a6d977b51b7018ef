package sqlstore

import (
	"context"
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const expenseColumns = `id, owner_id, title, amount, category, type, date, notes, split_with, created_at, updated_at`

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	splits, err := encodeJSON(e.SplitWith)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Title, e.Amount, e.Category, string(e.Type), millis(e.Date), e.Notes, splits,
		millis(e.CreatedAt), millis(e.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, ownerID, id string) (core.Expense, error) {
	row := s.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, notFound(err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) error {
	splits, err := encodeJSON(e.SplitWith)
	if err != nil {
		return err
	}
	err = s.execOne(ctx, `UPDATE expenses
		SET title = ?, amount = ?, category = ?, type = ?, date = ?, notes = ?, split_with = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		e.Title, e.Amount, e.Category, string(e.Type), millis(e.Date), e.Notes, splits, millis(e.UpdatedAt),
		e.ID, e.OwnerID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.execOne(ctx, `DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, ownerID string, f store.ExpenseFilter) ([]core.Expense, error) {
	w := &where{}
	w.add("owner_id = ?", ownerID)
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.Type != "" {
		w.add("type = ?", string(f.Type))
	}
	if f.From != nil {
		w.add("date >= ?", millis(*f.From))
	}
	if f.To != nil {
		w.add("date <= ?", millis(*f.To))
	}

	rows, err := s.query(ctx, `SELECT `+expenseColumns+` FROM expenses`+w.String()+
		` ORDER BY date DESC, created_at DESC`+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanExpense(sc scanner) (core.Expense, error) {
	var (
		e                      core.Expense
		typ, splits            string
		date, created, updated int64
	)
	if err := sc.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Amount, &e.Category, &typ, &date, &e.Notes, &splits, &created, &updated); err != nil {
		return core.Expense{}, err
	}
	e.Type = core.ExpenseType(typ)
	e.Date = fromMillis(date)
	e.CreatedAt = fromMillis(created)
	e.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(splits, &e.SplitWith); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
