package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BillOpen    BillStatus = "open"
	BillSettled BillStatus = "settled"

	// ReminderWindow is how close to its due date a bill must be for its
	// reminders to be sent as urgent.
	ReminderWindow = 3 * 24 * time.Hour

	MaxReminderLength = 280
)

type (
	BillStatus string

	Participant struct {
		ParticipantID string          `json:"participantId"`
		Name          string          `json:"name"`
		Share         decimal.Decimal `json:"share"`
		Settled       bool            `json:"settled"`
	}

	Bill struct {
		ID           string          `json:"id"`
		OwnerID      string          `json:"ownerId"`
		Description  string          `json:"description"`
		Total        decimal.Decimal `json:"total"`
		Participants []Participant   `json:"participants"`
		DueDate      *time.Time      `json:"dueDate,omitempty"`
		ReminderSent bool            `json:"reminderSent"`
		CreatedAt    time.Time       `json:"createdAt"`
		UpdatedAt    time.Time       `json:"updatedAt"`
	}

	// BillView is a bill together with its derived status.
	BillView struct {
		Bill
		Status BillStatus `json:"status"`
	}
)

func (s BillStatus) Valid() bool {
	return s == BillOpen || s == BillSettled
}

// Status is settled iff every participant has settled. It is never stored.
func (b Bill) Status() BillStatus {
	for _, p := range b.Participants {
		if !p.Settled {
			return BillOpen
		}
	}
	return BillSettled
}

// View attaches the derived status.
func (b Bill) View() BillView {
	return BillView{Bill: b, Status: b.Status()}
}

// Validate checks the creation invariants, including the share total.
func (b Bill) Validate() error {
	if strings.TrimSpace(b.Description) == "" {
		return ErrEmptyDescription
	}
	if !b.Total.IsPositive() {
		return Validationf("total must be positive")
	}
	if err := ValidateAmount("total", b.Total); err != nil {
		return err
	}
	if len(b.Participants) == 0 {
		return Validationf("at least one participant is required")
	}
	shares := make([]decimal.Decimal, 0, len(b.Participants))
	for i, p := range b.Participants {
		if strings.TrimSpace(p.Name) == "" {
			return Validationf("participants[%d].name is required", i)
		}
		if !p.Share.IsPositive() {
			return Validationf("participants[%d].share must be positive", i)
		}
		if err := ValidateAmount(fmt.Sprintf("participants[%d].share", i), p.Share); err != nil {
			return err
		}
		shares = append(shares, p.Share)
	}
	if !SharesMatch(b.Total, shares) {
		return ErrSharesMismatch
	}
	return nil
}

// Participant returns a pointer to the participant with id, or nil.
func (b *Bill) Participant(id string) *Participant {
	for i := range b.Participants {
		if b.Participants[i].ParticipantID == id {
			return &b.Participants[i]
		}
	}
	return nil
}

// DueSoon reports whether the bill is due within ReminderWindow of now.
// Overdue bills are due soon; bills without a due date never are.
func (b Bill) DueSoon(now time.Time) bool {
	if b.DueDate == nil {
		return false
	}
	return b.DueDate.Sub(now) <= ReminderWindow
}

// ReminderBody is the default reminder text for b.
func (b Bill) ReminderBody() string {
	due := "soon"
	if b.DueDate != nil {
		due = b.DueDate.Format("Jan 2")
	}
	return fmt.Sprintf("Reminder: %s (%s) is due %s.", b.Description, b.Total.StringFixed(2), due)
}
