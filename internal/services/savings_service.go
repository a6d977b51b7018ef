package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

type (
	CreateGoalInput struct {
		Label         string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		Deadline      *time.Time
	}

	// UpdateGoalInput cannot touch currentAmount; it only grows through
	// AddProgress.
	UpdateGoalInput struct {
		Label        *string
		TargetAmount *decimal.Decimal
		Deadline     *time.Time
	}

	// GoalProgress is a goal with its display percentage.
	GoalProgress struct {
		Goal    core.SavingsGoal `json:"goal"`
		Percent int64            `json:"percent"`
	}
)

type SavingsService struct {
	goals  store.SavingsStore
	logger *log.Logger
	clock  clock
}

func NewSavingsService(goals store.SavingsStore, logger *log.Logger) *SavingsService {
	if logger == nil {
		logger = log.Discard()
	}
	return &SavingsService{goals: goals, logger: logger.WithComponent(log.ComponentSavings)}
}

func (s *SavingsService) Create(ctx context.Context, ownerID string, in CreateGoalInput) (core.SavingsGoal, error) {
	now := s.clock.now()
	g := core.SavingsGoal{
		ID:            newID(),
		OwnerID:       ownerID,
		Label:         strings.TrimSpace(in.Label),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		Deadline:      in.Deadline,
		History:       []core.Contribution{},
		Tips:          []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	if err := s.goals.CreateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *SavingsService) Update(ctx context.Context, ownerID, id string, in UpdateGoalInput) (core.SavingsGoal, error) {
	g, err := s.goals.GetGoal(ctx, ownerID, id)
	if err != nil {
		return core.SavingsGoal{}, lookupErr(err, "get goal", "Goal not found")
	}
	if in.Label != nil {
		g.Label = strings.TrimSpace(*in.Label)
	}
	if in.TargetAmount != nil {
		g.TargetAmount = *in.TargetAmount
	}
	if in.Deadline != nil {
		g.Deadline = in.Deadline
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	g.UpdatedAt = s.clock.now()

	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, lookupErr(err, "update goal", "Goal not found")
	}
	return g, nil
}

// AddProgress records a positive contribution.
func (s *SavingsService) AddProgress(ctx context.Context, ownerID, id string, amount decimal.Decimal, note string) (GoalProgress, error) {
	if !amount.IsPositive() {
		return GoalProgress{}, core.ErrInvalidAmount
	}
	if err := core.ValidateAmount("amount", amount); err != nil {
		return GoalProgress{}, err
	}
	g, err := s.goals.GetGoal(ctx, ownerID, id)
	if err != nil {
		return GoalProgress{}, lookupErr(err, "get goal", "Goal not found")
	}
	if err := g.AddProgress(amount, strings.TrimSpace(note), s.clock.now()); err != nil {
		return GoalProgress{}, err
	}
	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return GoalProgress{}, lookupErr(err, "update goal", "Goal not found")
	}

	s.logger.DebugContext(ctx, "Savings progress recorded",
		log.FieldGoalID, g.ID, log.FieldAmount, amount.StringFixed(2))
	return GoalProgress{Goal: g, Percent: g.DisplayPercent()}, nil
}

func (s *SavingsService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.goals.GetGoal(ctx, ownerID, id); err != nil {
		return lookupErr(err, "get goal", "Goal not found")
	}
	if err := s.goals.DeleteGoal(ctx, ownerID, id); err != nil {
		return lookupErr(err, "delete goal", "Goal not found")
	}
	return nil
}

// List returns goals newest first; limit 0 means all.
func (s *SavingsService) List(ctx context.Context, ownerID string, limit int) ([]core.SavingsGoal, error) {
	goals, err := s.goals.ListGoals(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}
