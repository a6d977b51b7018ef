package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Personal ExpenseType = "personal"
	Group    ExpenseType = "group"

	Debit  Direction = "debit"
	Credit Direction = "credit"

	DefaultCategory       = "general"
	UncategorizedCategory = "uncategorized"
	BillsCategory         = "bills"

	maxTitleLength = 200
)

type (
	ExpenseType string

	Direction string

	// Split is one participant's portion of a group expense.
	Split struct {
		ParticipantID string          `json:"participantId"`
		Share         decimal.Decimal `json:"share"`
		Settled       bool            `json:"settled"`
	}

	Expense struct {
		ID        string          `json:"id"`
		OwnerID   string          `json:"ownerId"`
		Title     string          `json:"title"`
		Amount    decimal.Decimal `json:"amount"`
		Category  string          `json:"category"`
		Type      ExpenseType     `json:"type"`
		Date      time.Time       `json:"date"`
		Notes     string          `json:"notes,omitempty"`
		SplitWith []Split         `json:"splitWith"`
		CreatedAt time.Time       `json:"createdAt"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}

	// Transaction is the normalized ledger entry mirrored from an expense or
	// a bill settlement. Insights aggregate over transactions only.
	Transaction struct {
		ID              string          `json:"id"`
		OwnerID         string          `json:"ownerId"`
		SourceExpenseID string          `json:"sourceExpenseId,omitempty"`
		SourceBillID    string          `json:"sourceBillId,omitempty"`
		Direction       Direction       `json:"direction"`
		Amount          decimal.Decimal `json:"amount"`
		Category        string          `json:"category"`
		ParticipantIDs  []string        `json:"participantIds"`
		Notes           string          `json:"notes,omitempty"`
		CreatedAt       time.Time       `json:"createdAt"`
	}

	// TransactionSync carries the expense fields copied onto its mirror.
	TransactionSync struct {
		Amount         decimal.Decimal
		Category       string
		Notes          string
		ParticipantIDs []string
	}

	// PeriodTotal is the sum of transaction amounts within one period.
	PeriodTotal struct {
		Period Period          `json:"period"`
		Total  decimal.Decimal `json:"total"`
	}
)

func (t ExpenseType) Valid() bool {
	return t == Personal || t == Group
}

func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// Validate checks the invariants of a stored expense.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > maxTitleLength {
		return Validationf("title too long (max %d characters)", maxTitleLength)
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := ValidateAmount("amount", e.Amount); err != nil {
		return err
	}
	if !e.Type.Valid() {
		return Validationf("type must be one of personal, group")
	}
	if e.Date.IsZero() {
		return Validationf("date cannot be zero")
	}
	for i, s := range e.SplitWith {
		if strings.TrimSpace(s.ParticipantID) == "" {
			return Validationf("splitWith[%d].participantId is required", i)
		}
		if !s.Share.IsPositive() {
			return Validationf("splitWith[%d].share must be positive", i)
		}
		if err := ValidateAmount(fmt.Sprintf("splitWith[%d].share", i), s.Share); err != nil {
			return err
		}
	}
	return nil
}

// ParticipantIDs lists the participants of the split in order.
func (e Expense) ParticipantIDs() []string {
	ids := make([]string, 0, len(e.SplitWith))
	for _, s := range e.SplitWith {
		ids = append(ids, s.ParticipantID)
	}
	return ids
}

// Mirror returns the debit transaction that represents e in the ledger.
func (e Expense) Mirror() Transaction {
	return Transaction{
		OwnerID:         e.OwnerID,
		SourceExpenseID: e.ID,
		Direction:       Debit,
		Amount:          e.Amount,
		Category:        e.Category,
		ParticipantIDs:  e.ParticipantIDs(),
		Notes:           e.Notes,
	}
}

// Sync returns the fields of e that its mirror must reflect.
func (e Expense) Sync() TransactionSync {
	return TransactionSync{
		Amount:         e.Amount,
		Category:       e.Category,
		Notes:          e.Notes,
		ParticipantIDs: e.ParticipantIDs(),
	}
}

// Apply copies the synchronized fields onto t.
func (s TransactionSync) Apply(t *Transaction) {
	t.Amount = s.Amount
	t.Category = s.Category
	t.Notes = s.Notes
	t.ParticipantIDs = append([]string(nil), s.ParticipantIDs...)
}
