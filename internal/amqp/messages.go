package amqp

import (
	"encoding/json"
	"time"

	"spendwise/internal/core"
)

const EventNotificationCreated = "notification.created"

// NotificationEvent carries a full notification so consumers (an email
// sender, a push gateway) need no access to the store.
type NotificationEvent struct {
	Event        string            `json:"event"`
	Notification core.Notification `json:"notification"`
	Timestamp    time.Time         `json:"timestamp"`
}

func NewNotificationEvent(n core.Notification) *NotificationEvent {
	return &NotificationEvent{
		Event:        EventNotificationCreated,
		Notification: n,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationEventFromJSON decodes a message published by PublishNotification.
func NotificationEventFromJSON(data []byte) (*NotificationEvent, error) {
	var msg NotificationEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
