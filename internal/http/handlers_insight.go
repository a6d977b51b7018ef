package http

import (
	"net/http"
	"strings"

	"spendwise/internal/services"
)

type recalculateRequest struct {
	Period string `json:"period"`
}

// period reads ?period=; empty means the current month.
func period(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("period"))
}

func (s *Server) handleInsightOverview(w http.ResponseWriter, r *http.Request) error {
	insight, err := s.svc.Insights.Overview(r.Context(), ownerID(r), period(r))
	if err != nil {
		return err
	}
	return OK(envelope{"insight": insight}).Write(w)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) error {
	recs, err := s.svc.Insights.Recommendations(r.Context(), ownerID(r), period(r))
	if err != nil {
		return err
	}
	return OK(envelope{"recommendations": recs}).Write(w)
}

// handleRecalculate takes the period from the body, falling back to the
// query string.
func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) error {
	var req recalculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	p := strings.TrimSpace(req.Period)
	if p == "" {
		p = period(r)
	}
	insight, err := s.svc.Insights.Recalculate(r.Context(), ownerID(r), p)
	if err != nil {
		return err
	}
	return OK(envelope{"insight": insight, "message": "Insights regenerated"}).Write(w)
}

type transactionRequest struct {
	Notes *string `json:"notes"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) error {
	start, err := queryDate(r, "start", s.loc)
	if err != nil {
		return err
	}
	end, err := queryDate(r, "end", s.loc)
	if err != nil {
		return err
	}
	txs, err := s.svc.Transactions.List(r.Context(), ownerID(r), services.TransactionQuery{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Start:    start,
		End:      end,
	})
	if err != nil {
		return err
	}
	return OK(envelope{"transactions": txs}).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) error {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Notes == nil {
		return requiredErr("notes")
	}
	tx, err := s.svc.Transactions.UpdateNotes(r.Context(), ownerID(r), urlID(r), sanitizeInput(*req.Notes))
	if err != nil {
		return err
	}
	return OK(envelope{"transaction": tx}).Write(w)
}
