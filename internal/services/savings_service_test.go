package services

import (
	"context"
	"testing"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store/memory"
)

func newSavingsService() *SavingsService {
	svc := NewSavingsService(memory.New(), log.Discard())
	svc.clock = fixedClock
	return svc
}

func TestSavingsService_AddProgress(t *testing.T) {
	ctx := context.Background()
	svc := newSavingsService()

	g, err := svc.Create(ctx, owner, CreateGoalInput{Label: "Trip", TargetAmount: dec("1000")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	steps := []struct {
		amount  string
		percent int64
		tips    []string
	}{
		{"200", 20, nil},
		{"300", 50, []string{core.HalfwayTip}},
		{"100", 60, []string{core.HalfwayTip}},
		{"600", 100, []string{core.CompletionTip}},
	}
	for _, step := range steps {
		p, err := svc.AddProgress(ctx, owner, g.ID, dec(step.amount), " note ")
		if err != nil {
			t.Fatalf("AddProgress(%s) error = %v", step.amount, err)
		}
		if p.Percent != step.percent {
			t.Errorf("AddProgress(%s) percent = %d, want %d", step.amount, p.Percent, step.percent)
		}
		if len(p.Goal.Tips) != len(step.tips) || (len(step.tips) > 0 && p.Goal.Tips[0] != step.tips[0]) {
			t.Errorf("AddProgress(%s) tips = %v, want %v", step.amount, p.Goal.Tips, step.tips)
		}
	}

	goals, err := svc.List(ctx, owner, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 1 || len(goals[0].History) != 4 || goals[0].History[0].Note != "note" {
		t.Errorf("stored goal = %+v", goals)
	}
	if !goals[0].CurrentAmount.Equal(dec("1200")) {
		t.Errorf("currentAmount = %s, want 1200", goals[0].CurrentAmount)
	}
}

func TestSavingsService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newSavingsService()

	g, err := svc.Create(ctx, owner, CreateGoalInput{Label: "Car", TargetAmount: dec("500")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Create(ctx, owner, CreateGoalInput{Label: "", TargetAmount: dec("5")})
	wantKind(t, err, core.KindValidation)

	_, err = svc.AddProgress(ctx, owner, g.ID, dec("0"), "")
	wantKind(t, err, core.KindValidation)

	_, err = svc.AddProgress(ctx, owner, "missing", dec("1"), "")
	wantKind(t, err, core.KindNotFound)

	_, err = svc.Update(ctx, owner, g.ID, UpdateGoalInput{TargetAmount: ptr(dec("-1"))})
	wantKind(t, err, core.KindValidation)

	updated, err := svc.Update(ctx, owner, g.ID, UpdateGoalInput{Label: ptr("New car")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Label != "New car" || !updated.TargetAmount.Equal(dec("500")) {
		t.Errorf("updated = %+v", updated)
	}

	if err := svc.Delete(ctx, owner, g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	err = svc.Delete(ctx, owner, g.ID)
	wantKind(t, err, core.KindNotFound)
	if core.MessageOf(err) != "Goal not found" {
		t.Errorf("message = %q", core.MessageOf(err))
	}
}
