package core

import (
	"strings"
	"time"
)

const (
	NotificationInfo     NotificationType = "info"
	NotificationReminder NotificationType = "reminder"
	NotificationUrgent   NotificationType = "urgent"

	ChannelInApp Channel = "in-app"
	ChannelEmail Channel = "email"

	ReminderTitle = "Bill Reminder"
)

type (
	NotificationType string

	Channel string

	Notification struct {
		ID          string           `json:"id"`
		OwnerID     string           `json:"ownerId"`
		RecipientID string           `json:"recipientId,omitempty"`
		BillID      string           `json:"billId,omitempty"`
		Type        NotificationType `json:"type"`
		Title       string           `json:"title"`
		Body        string           `json:"body"`
		CTA         string           `json:"cta,omitempty"`
		Read        bool             `json:"read"`
		Channel     Channel          `json:"channel"`
		CreatedAt   time.Time        `json:"createdAt"`
	}
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationReminder, NotificationUrgent:
		return true
	}
	return false
}

func (c Channel) Valid() bool {
	return c == ChannelInApp || c == ChannelEmail
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(n.Body) == "" {
		return Validationf("body is required")
	}
	if !n.Type.Valid() {
		return Validationf("type must be one of info, reminder, urgent")
	}
	if !n.Channel.Valid() {
		return Validationf("channel must be one of in-app, email")
	}
	return nil
}

// Reminders builds one notification per unsettled participant of b.
// The result is empty when everyone has settled.
func Reminders(b Bill, body string, now time.Time) []Notification {
	if body == "" {
		body = b.ReminderBody()
	}
	kind := NotificationReminder
	if b.DueSoon(now) {
		kind = NotificationUrgent
	}

	var out []Notification
	for _, p := range b.Participants {
		if p.Settled {
			continue
		}
		out = append(out, Notification{
			OwnerID:     b.OwnerID,
			RecipientID: p.ParticipantID,
			BillID:      b.ID,
			Type:        kind,
			Title:       ReminderTitle,
			Body:        body,
			Channel:     ChannelInApp,
			CreatedAt:   now,
		})
	}
	return out
}
