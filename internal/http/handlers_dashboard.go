package http

import (
	"context"
	"net/http"
	"time"
)

// dashboardTimeout bounds the concurrent reads behind the summary.
const dashboardTimeout = 7 * time.Second

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	summary, err := s.svc.Dashboard.Summary(ctx, ownerID(r))
	if err != nil {
		return err
	}
	return OK(summary).Write(w)
}

func (s *Server) handleQuickActions(w http.ResponseWriter, r *http.Request) error {
	return OK(envelope{"actions": s.svc.Dashboard.QuickActions()}).Write(w)
}
