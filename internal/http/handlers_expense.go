package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

// expenseRequest serves both create and partial update; absent fields are
// nil.
type expenseRequest struct {
	Title     *string           `json:"title"`
	Amount    *decimal.Decimal  `json:"amount"`
	Category  *string           `json:"category"`
	Type      *core.ExpenseType `json:"type"`
	Date      *string           `json:"date"`
	Notes     *string           `json:"notes"`
	SplitWith *[]core.Split     `json:"splitWith"`
}

func (s *Server) toCreateExpense(req expenseRequest) (services.CreateExpenseInput, error) {
	var in services.CreateExpenseInput
	if req.Title == nil {
		return in, requiredErr("title")
	}
	if req.Amount == nil {
		return in, requiredErr("amount")
	}
	date, err := parseOptionalDate("date", req.Date, s.loc)
	if err != nil {
		return in, err
	}

	in = services.CreateExpenseInput{
		Title:  sanitizeInput(*req.Title),
		Amount: *req.Amount,
		Date:   date,
	}
	if req.Category != nil {
		in.Category = sanitizeInput(*req.Category)
	}
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Notes != nil {
		in.Notes = sanitizeInput(*req.Notes)
	}
	if req.SplitWith != nil {
		in.SplitWith = *req.SplitWith
	}
	return in, nil
}

func (s *Server) toUpdateExpense(req expenseRequest) (services.UpdateExpenseInput, error) {
	date, err := parseOptionalDate("date", req.Date, s.loc)
	if err != nil {
		return services.UpdateExpenseInput{}, err
	}
	return services.UpdateExpenseInput{
		Title:     sanitizePtr(req.Title),
		Amount:    req.Amount,
		Category:  sanitizePtr(req.Category),
		Type:      req.Type,
		Date:      date,
		Notes:     sanitizePtr(req.Notes),
		SplitWith: req.SplitWith,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) error {
	start, err := queryDate(r, "start", s.loc)
	if err != nil {
		return err
	}
	end, err := queryDate(r, "end", s.loc)
	if err != nil {
		return err
	}
	q := r.URL.Query()
	expenses, err := s.svc.Expenses.List(r.Context(), ownerID(r), services.ExpenseQuery{
		Category: strings.TrimSpace(q.Get("category")),
		Type:     core.ExpenseType(strings.TrimSpace(q.Get("type"))),
		Start:    start,
		End:      end,
	})
	if err != nil {
		return err
	}
	return OK(envelope{"expenses": expenses}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) error {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	in, err := s.toCreateExpense(req)
	if err != nil {
		return err
	}
	e, err := s.svc.Expenses.Create(r.Context(), ownerID(r), in)
	if err != nil {
		return err
	}
	return Created(envelope{"expense": e}).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) error {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	in, err := s.toUpdateExpense(req)
	if err != nil {
		return err
	}
	e, err := s.svc.Expenses.Update(r.Context(), ownerID(r), urlID(r), in)
	if err != nil {
		return err
	}
	return OK(envelope{"expense": e}).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) error {
	if err := s.svc.Expenses.Delete(r.Context(), ownerID(r), urlID(r)); err != nil {
		return err
	}
	return OK(envelope{"message": "Expense removed"}).Write(w)
}
