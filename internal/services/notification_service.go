package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

const minNotificationText = 3

// NotificationLedger is the storage a NotificationService needs.
type NotificationLedger interface {
	store.NotificationStore
	store.BillStore
}

type TestNotificationInput struct {
	Title   string
	Body    string
	Type    core.NotificationType
	CTA     string
	Channel core.Channel
}

// ReminderResult reports what SendReminder created.
type ReminderResult struct {
	Bill          core.BillView       `json:"bill"`
	Notifications []core.Notification `json:"notifications"`
}

type NotificationService struct {
	ledger    NotificationLedger
	publisher Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
	clock     clock
}

// NewNotificationService wires the store and an optional publisher.
func NewNotificationService(ledger NotificationLedger, publisher Publisher, logger *log.Logger) *NotificationService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentNotification)
	return &NotificationService{
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// List returns notifications newest first.
func (s *NotificationService) List(ctx context.Context, ownerID string, unreadOnly bool, limit int) ([]core.Notification, error) {
	ns, err := s.ledger.ListNotifications(ctx, ownerID, store.NotificationFilter{UnreadOnly: unreadOnly, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, ownerID, id string) (core.Notification, error) {
	n, err := s.ledger.MarkNotificationRead(ctx, ownerID, id)
	if err != nil {
		return core.Notification{}, lookupErr(err, "mark notification read", "Notification not found")
	}
	return n, nil
}

// CreateTest stores a notification built from user input.
func (s *NotificationService) CreateTest(ctx context.Context, ownerID string, in TestNotificationInput) (core.Notification, error) {
	n := core.Notification{
		ID:        newID(),
		OwnerID:   ownerID,
		Type:      in.Type,
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
		CTA:       strings.TrimSpace(in.CTA),
		Channel:   in.Channel,
		CreatedAt: s.clock.now(),
	}
	if n.Type == "" {
		n.Type = core.NotificationInfo
	}
	if n.Channel == "" {
		n.Channel = core.ChannelInApp
	}
	if utf8.RuneCountInString(n.Title) < minNotificationText {
		return core.Notification{}, core.Validationf("title must be at least %d characters", minNotificationText)
	}
	if utf8.RuneCountInString(n.Body) < minNotificationText {
		return core.Notification{}, core.Validationf("body must be at least %d characters", minNotificationText)
	}
	if err := n.Validate(); err != nil {
		return core.Notification{}, err
	}

	if err := s.ledger.CreateNotifications(ctx, []core.Notification{n}); err != nil {
		return core.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	s.publish(ctx, []core.Notification{n})
	return n, nil
}

// SendReminder notifies every unsettled participant of a bill in one batch
// and marks the bill as reminded, even when nobody was left to notify.
func (s *NotificationService) SendReminder(ctx context.Context, ownerID, billID, message string) (ReminderResult, error) {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > core.MaxReminderLength {
		return ReminderResult{}, core.Validationf("message must be at most %d characters", core.MaxReminderLength)
	}

	b, err := s.ledger.GetBill(ctx, ownerID, billID)
	if err != nil {
		return ReminderResult{}, lookupErr(err, "get bill", "Bill not found")
	}

	now := s.clock.now()
	reminders := core.Reminders(b, message, now)
	for i := range reminders {
		reminders[i].ID = newID()
	}

	if len(reminders) > 0 {
		if err := s.ledger.CreateNotifications(ctx, reminders); err != nil {
			return ReminderResult{}, fmt.Errorf("create reminders for bill %s: %w", b.ID, err)
		}
	}

	b.ReminderSent = true
	b.UpdatedAt = now
	if err := s.ledger.UpdateBill(ctx, b); err != nil {
		return ReminderResult{}, lookupErr(err, "update bill", "Bill not found")
	}

	s.logger.InfoContext(ctx, "Bill reminder sent",
		log.FieldBillID, b.ID, log.FieldOwnerID, ownerID, log.FieldCount, len(reminders))
	s.publish(ctx, reminders)

	if reminders == nil {
		reminders = []core.Notification{}
	}
	return ReminderResult{Bill: b.View(), Notifications: reminders}, nil
}

// publish never fails the caller: notifications are already stored.
func (s *NotificationService) publish(ctx context.Context, ns []core.Notification) {
	if s.publisher == nil {
		if len(ns) > 0 {
			s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping notification events", log.FieldCount, len(ns))
		}
		return
	}
	for _, n := range ns {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			s.events.LogError(ctx, "Failed to publish notification", err,
				log.ComponentNotification, log.OpPublish, log.LogFields{"notification_id": n.ID})
		}
	}
}
