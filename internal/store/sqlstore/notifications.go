package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

const notificationColumns = `id, owner_id, recipient_id, bill_id, type, title, body, cta, read, channel, created_at`

// CreateNotifications writes ns with one multi-row INSERT.
func (s *Store) CreateNotifications(ctx context.Context, ns []core.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	const rowPlaceholders = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	values := make([]string, 0, len(ns))
	args := make([]any, 0, len(ns)*11)
	for _, n := range ns {
		values = append(values, rowPlaceholders)
		args = append(args, n.ID, n.OwnerID, n.RecipientID, n.BillID, string(n.Type), n.Title, n.Body, n.CTA,
			n.Read, string(n.Channel), millis(n.CreatedAt))
	}

	_, err := s.exec(ctx, `INSERT INTO notifications (`+notificationColumns+`) VALUES `+strings.Join(values, ", "), args...)
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, ownerID, id string) (core.Notification, error) {
	if err := s.execOne(ctx, `UPDATE notifications SET read = ? WHERE id = ? AND owner_id = ?`, true, id, ownerID); err != nil {
		return core.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	row := s.queryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND owner_id = ?`, id, ownerID)
	n, err := scanNotification(row)
	if err != nil {
		return core.Notification{}, notFound(err)
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, ownerID string, f store.NotificationFilter) ([]core.Notification, error) {
	w := &where{}
	w.add("owner_id = ?", ownerID)
	if f.UnreadOnly {
		w.add("read = ?", false)
	}

	rows, err := s.query(ctx, `SELECT `+notificationColumns+` FROM notifications`+w.String()+
		` ORDER BY created_at DESC, id DESC`+limitClause(f.Limit), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]core.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(sc scanner) (core.Notification, error) {
	var (
		n            core.Notification
		typ, channel string
		created      int64
	)
	if err := sc.Scan(&n.ID, &n.OwnerID, &n.RecipientID, &n.BillID, &typ, &n.Title, &n.Body, &n.CTA, &n.Read,
		&channel, &created); err != nil {
		return core.Notification{}, err
	}
	n.Type = core.NotificationType(typ)
	n.Channel = core.Channel(channel)
	n.CreatedAt = fromMillis(created)
	return n, nil
}
