package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

type (
	billRequest struct {
		Description  string               `json:"description"`
		Total        decimal.Decimal      `json:"total"`
		Participants []participantRequest `json:"participants"`
		DueDate      *string              `json:"dueDate"`
	}

	// participantRequest accepts userId as an alias of participantId.
	participantRequest struct {
		ParticipantID string          `json:"participantId"`
		UserID        string          `json:"userId"`
		Name          string          `json:"name"`
		Share         decimal.Decimal `json:"share"`
	}

	settleRequest struct {
		ParticipantID string `json:"participantId"`
	}

	remindRequest struct {
		Message string `json:"message"`
	}
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) error {
	status := core.BillStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	bills, err := s.svc.Bills.List(r.Context(), ownerID(r), status)
	if err != nil {
		return err
	}
	return OK(envelope{"bills": bills}).Write(w)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) error {
	var req billRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	due, err := parseOptionalDate("dueDate", req.DueDate, s.loc)
	if err != nil {
		return err
	}

	participants := make([]core.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		id := p.ParticipantID
		if id == "" {
			id = p.UserID
		}
		participants = append(participants, core.Participant{
			ParticipantID: sanitizeInput(id),
			Name:          sanitizeInput(p.Name),
			Share:         p.Share,
		})
	}

	bill, err := s.svc.Bills.Create(r.Context(), ownerID(r), services.CreateBillInput{
		Description:  sanitizeInput(req.Description),
		Total:        req.Total,
		Participants: participants,
		DueDate:      due,
	})
	if err != nil {
		return err
	}
	return Created(envelope{"bill": bill}).Write(w)
}

func (s *Server) handleSettleBill(w http.ResponseWriter, r *http.Request) error {
	var req settleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	participantID, err := requireString("participantId", req.ParticipantID)
	if err != nil {
		return err
	}
	bill, err := s.svc.Bills.SettleShare(r.Context(), ownerID(r), urlID(r), participantID)
	if err != nil {
		return err
	}
	return OK(envelope{"bill": bill}).Write(w)
}

func (s *Server) handleRemindBill(w http.ResponseWriter, r *http.Request) error {
	var req remindRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	res, err := s.svc.Notifications.SendReminder(r.Context(), ownerID(r), urlID(r), sanitizeInput(req.Message))
	if err != nil {
		return err
	}
	return OK(envelope{
		"message":       "Reminder sent",
		"bill":          res.Bill,
		"notifications": res.Notifications,
	}).Write(w)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) error {
	if err := s.svc.Bills.Delete(r.Context(), ownerID(r), urlID(r)); err != nil {
		return err
	}
	return OK(envelope{"message": "Bill deleted successfully"}).Write(w)
}
