package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"spendwise/internal/services"
)

type (
	goalRequest struct {
		Label         *string          `json:"label"`
		TargetAmount  *decimal.Decimal `json:"targetAmount"`
		CurrentAmount *decimal.Decimal `json:"currentAmount"`
		Deadline      *string          `json:"deadline"`
	}

	progressRequest struct {
		Amount decimal.Decimal `json:"amount"`
		Note   string          `json:"note"`
	}
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryLimit(r)
	if err != nil {
		return err
	}
	goals, err := s.svc.Savings.List(r.Context(), ownerID(r), limit)
	if err != nil {
		return err
	}
	return OK(envelope{"goals": goals}).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) error {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Label == nil {
		return requiredErr("label")
	}
	if req.TargetAmount == nil {
		return requiredErr("targetAmount")
	}
	deadline, err := parseOptionalDate("deadline", req.Deadline, s.loc)
	if err != nil {
		return err
	}

	in := services.CreateGoalInput{
		Label:         sanitizeInput(*req.Label),
		TargetAmount:  *req.TargetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline,
	}
	if req.CurrentAmount != nil {
		in.CurrentAmount = *req.CurrentAmount
	}

	goal, err := s.svc.Savings.Create(r.Context(), ownerID(r), in)
	if err != nil {
		return err
	}
	return Created(envelope{"goal": goal}).Write(w)
}

// handleUpdateGoal ignores currentAmount; progress only moves through
// handleAddProgress.
func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) error {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	deadline, err := parseOptionalDate("deadline", req.Deadline, s.loc)
	if err != nil {
		return err
	}
	goal, err := s.svc.Savings.Update(r.Context(), ownerID(r), urlID(r), services.UpdateGoalInput{
		Label:        sanitizePtr(req.Label),
		TargetAmount: req.TargetAmount,
		Deadline:     deadline,
	})
	if err != nil {
		return err
	}
	return OK(envelope{"goal": goal}).Write(w)
}

func (s *Server) handleAddProgress(w http.ResponseWriter, r *http.Request) error {
	var req progressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	progress, err := s.svc.Savings.AddProgress(r.Context(), ownerID(r), urlID(r), req.Amount, sanitizeInput(req.Note))
	if err != nil {
		return err
	}
	return OK(progress).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) error {
	if err := s.svc.Savings.Delete(r.Context(), ownerID(r), urlID(r)); err != nil {
		return err
	}
	return OK(envelope{"message": "Goal deleted successfully"}).Write(w)
}
