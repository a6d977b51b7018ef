package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const goalColumns = `id, owner_id, label, target_amount, current_amount, deadline, history, tips, created_at, updated_at`

func (s *Store) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	history, tips, err := encodeGoalLists(g)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO savings_goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Label, g.TargetAmount, g.CurrentAmount, nullMillis(g.Deadline), history, tips,
		millis(g.CreatedAt), millis(g.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert savings goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(ctx context.Context, ownerID, id string) (core.SavingsGoal, error) {
	row := s.queryRow(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	g, err := scanGoal(row)
	if err != nil {
		return core.SavingsGoal{}, notFound(err)
	}
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	history, tips, err := encodeGoalLists(g)
	if err != nil {
		return err
	}
	err = s.execOne(ctx, `UPDATE savings_goals
		SET label = ?, target_amount = ?, current_amount = ?, deadline = ?, history = ?, tips = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		g.Label, g.TargetAmount, g.CurrentAmount, nullMillis(g.Deadline), history, tips, millis(g.UpdatedAt),
		g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, ownerID, id string) error {
	if err := s.execOne(ctx, `DELETE FROM savings_goals WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return nil
}

func (s *Store) ListGoals(ctx context.Context, ownerID string, limit int) ([]core.SavingsGoal, error) {
	rows, err := s.query(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE owner_id = ?
		ORDER BY created_at DESC`+limitClause(limit), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	out := make([]core.SavingsGoal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func encodeGoalLists(g core.SavingsGoal) (history, tips string, err error) {
	if history, err = encodeJSON(nonNil(g.History)); err != nil {
		return "", "", err
	}
	if tips, err = encodeJSON(nonNil(g.Tips)); err != nil {
		return "", "", err
	}
	return history, tips, nil
}

func scanGoal(sc scanner) (core.SavingsGoal, error) {
	var (
		g                core.SavingsGoal
		deadline         sql.NullInt64
		history, tips    string
		created, updated int64
	)
	if err := sc.Scan(&g.ID, &g.OwnerID, &g.Label, &g.TargetAmount, &g.CurrentAmount, &deadline, &history, &tips,
		&created, &updated); err != nil {
		return core.SavingsGoal{}, err
	}
	g.Deadline = fromNullMillis(deadline)
	g.CreatedAt = fromMillis(created)
	g.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(history, &g.History); err != nil {
		return core.SavingsGoal{}, err
	}
	if err := decodeJSON(tips, &g.Tips); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}
