package http

import (
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

type testNotificationRequest struct {
	Title   string                `json:"title"`
	Body    string                `json:"body"`
	Type    core.NotificationType `json:"type"`
	CTA     string                `json:"cta"`
	Channel core.Channel          `json:"channel"`
}

// handleListNotifications supports ?unread=true and ?limit=n.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) error {
	unread, err := queryBool(r, "unread")
	if err != nil {
		return err
	}
	limit, err := queryLimit(r)
	if err != nil {
		return err
	}
	ns, err := s.svc.Notifications.List(r.Context(), ownerID(r), unread, limit)
	if err != nil {
		return err
	}
	return OK(envelope{"notifications": ns}).Write(w)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) error {
	n, err := s.svc.Notifications.MarkRead(r.Context(), ownerID(r), urlID(r))
	if err != nil {
		return err
	}
	return OK(envelope{"notification": n}).Write(w)
}

func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) error {
	var req testNotificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	n, err := s.svc.Notifications.CreateTest(r.Context(), ownerID(r), services.TestNotificationInput{
		Title:   sanitizeInput(req.Title),
		Body:    sanitizeInput(req.Body),
		Type:    req.Type,
		CTA:     sanitizeInput(req.CTA),
		Channel: req.Channel,
	})
	if err != nil {
		return err
	}
	return Created(envelope{"notification": n}).Write(w)
}
