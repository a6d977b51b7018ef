package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CompletionTip = "Amazing! Consider setting a new stretch goal."
	HalfwayTip    = "Great traction. Schedule auto-transfers to keep momentum."
)

var hundred = decimal.NewFromInt(100)

type (
	Contribution struct {
		Amount decimal.Decimal `json:"amount"`
		Date   time.Time       `json:"date"`
		Note   string          `json:"note,omitempty"`
	}

	SavingsGoal struct {
		ID            string          `json:"id"`
		OwnerID       string          `json:"ownerId"`
		Label         string          `json:"label"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Deadline      *time.Time      `json:"deadline,omitempty"`
		History       []Contribution  `json:"history"`
		Tips          []string        `json:"tips"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}
)

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Label) == "" {
		return Validationf("label is required")
	}
	if !g.TargetAmount.IsPositive() {
		return Validationf("targetAmount must be positive")
	}
	if err := ValidateAmount("targetAmount", g.TargetAmount); err != nil {
		return err
	}
	if g.CurrentAmount.IsNegative() {
		return Validationf("currentAmount cannot be negative")
	}
	if err := ValidateAmount("currentAmount", g.CurrentAmount); err != nil {
		return err
	}
	return nil
}

// Percent is the unclamped progress toward the target, in percent.
func (g SavingsGoal) Percent() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
}

// DisplayPercent is Percent rounded to an integer and capped at 100.
func (g SavingsGoal) DisplayPercent() int64 {
	p := g.Percent().Round(0)
	if p.GreaterThan(hundred) {
		return 100
	}
	return p.IntPart()
}

// AddProgress records a contribution and updates the tips.
// A completed goal keeps only the completion tip; the halfway tip is added
// once, and only while the goal has no other tips.
func (g *SavingsGoal) AddProgress(amount decimal.Decimal, note string, at time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := ValidateAmount("amount", amount); err != nil {
		return err
	}
	if err := ValidateAmount("currentAmount", g.CurrentAmount.Add(amount)); err != nil {
		return err
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.History = append(g.History, Contribution{Amount: amount, Date: at, Note: note})

	percent := g.Percent()
	switch {
	case percent.GreaterThanOrEqual(hundred):
		g.Tips = []string{CompletionTip}
	case percent.GreaterThanOrEqual(decimal.NewFromInt(50)) && len(g.Tips) == 0:
		g.Tips = append(g.Tips, HalfwayTip)
	}
	g.UpdatedAt = at
	return nil
}
