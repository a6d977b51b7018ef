package sqlstore

import (
	"context"
	"fmt"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const userColumns = `id, name, email, password_hash, avatar_color, monthly_budget, preferences, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	prefs, err := encodeJSON(u.Preferences)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.AvatarColor, u.MonthlyBudget, prefs,
		millis(u.CreatedAt), millis(u.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return core.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u core.User) error {
	prefs, err := encodeJSON(u.Preferences)
	if err != nil {
		return err
	}
	err = s.execOne(ctx, `UPDATE users
		SET name = ?, email = ?, password_hash = ?, avatar_color = ?, monthly_budget = ?, preferences = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, u.AvatarColor, u.MonthlyBudget, prefs, millis(u.UpdatedAt), u.ID)
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func scanUser(sc scanner) (core.User, error) {
	var (
		u                core.User
		prefs            string
		created, updated int64
	)
	if err := sc.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AvatarColor, &u.MonthlyBudget, &prefs,
		&created, &updated); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(prefs, &u.Preferences); err != nil {
		return core.User{}, err
	}
	return u, nil
}
