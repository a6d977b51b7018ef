package services

import (
	"context"
	"testing"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store/memory"
)

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	expenses := NewExpenseService(st, time.UTC, log.Discard())
	expenses.clock = fixedClock
	bills := NewBillService(st, log.Discard())
	bills.clock = fixedClock
	dash := NewDashboardService(st, time.UTC, log.Discard())
	dash.clock = fixedClock

	for i := 0; i < 7; i++ {
		if _, err := expenses.Create(ctx, owner, CreateExpenseInput{Title: "Coffee", Amount: dec("5")}); err != nil {
			t.Fatalf("Create expense error = %v", err)
		}
	}
	open, err := bills.Create(ctx, owner, CreateBillInput{
		Description:  "Internet",
		Total:        dec("100"),
		Participants: []core.Participant{{ParticipantID: "a", Name: "Alice", Share: dec("100")}},
	})
	if err != nil {
		t.Fatalf("Create bill error = %v", err)
	}
	closed, err := bills.Create(ctx, owner, CreateBillInput{
		Description:  "Pizza",
		Total:        dec("10"),
		Participants: []core.Participant{{ParticipantID: "b", Name: "Bob", Share: dec("10")}},
	})
	if err != nil {
		t.Fatalf("Create bill error = %v", err)
	}
	if _, err := bills.SettleShare(ctx, owner, closed.ID, "b"); err != nil {
		t.Fatalf("SettleShare() error = %v", err)
	}
	april := fixedNow.AddDate(0, -1, 0)
	if err := st.CreateTransaction(ctx, core.Transaction{
		ID: "old", OwnerID: owner, Direction: core.Debit, Amount: dec("20"), Category: "food", CreatedAt: april,
	}); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	sum, err := dash.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if len(sum.RecentExpenses) != 5 {
		t.Errorf("recentExpenses = %d, want 5", len(sum.RecentExpenses))
	}
	if len(sum.OutstandingBills) != 2 {
		t.Errorf("bills = %d, want 2", len(sum.OutstandingBills))
	}
	if !sum.Summary.Outstanding.Equal(dec("100")) {
		t.Errorf("outstanding = %s, want 100 (only %s is open)", sum.Summary.Outstanding, open.ID)
	}
	// 7 x 5 in debits plus the 10 settlement credit.
	if !sum.Summary.MonthlySpend.Equal(dec("45")) {
		t.Errorf("monthlySpend = %s, want 45", sum.Summary.MonthlySpend)
	}
	if len(sum.MonthlyTotals) != 2 || sum.MonthlyTotals[0].Period != "2024-04" {
		t.Errorf("monthlyTotals = %+v, want April then May", sum.MonthlyTotals)
	}
	if !sum.Summary.SavingsRate.IsZero() {
		t.Errorf("savingsRate = %s, want 0 without a snapshot", sum.Summary.SavingsRate)
	}
	if len(sum.Recommendations) != len(DefaultRecommendations) {
		t.Errorf("recommendations = %v, want defaults", sum.Recommendations)
	}

	insights := NewInsightService(st, time.UTC, log.Discard())
	insights.clock = fixedClock
	if _, err := insights.Recalculate(ctx, owner, ""); err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	sum, err = dash.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Recommendations[0] != core.HighSpendRecommendation {
		t.Errorf("recommendations = %v, want the snapshot's", sum.Recommendations)
	}
}

func TestDashboardService_EmptyOwner(t *testing.T) {
	dash := NewDashboardService(memory.New(), nil, nil)
	dash.clock = fixedClock

	sum, err := dash.Summary(context.Background(), "")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !sum.Summary.MonthlySpend.IsZero() || !sum.Summary.Outstanding.IsZero() {
		t.Errorf("totals = %+v, want zeros", sum.Summary)
	}
	if sum.OutstandingBills == nil || sum.MonthlyTotals == nil {
		t.Error("empty lists must not be nil")
	}
	if len(dash.QuickActions()) != 4 {
		t.Errorf("quick actions = %d, want 4", len(dash.QuickActions()))
	}
}

func TestMonthlyTotals(t *testing.T) {
	txs := []core.Transaction{
		{Amount: dec("10"), CreatedAt: time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC)},
		{Amount: dec("5"), CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Amount: dec("7"), CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := MonthlyTotals(txs, time.UTC)
	want := []core.PeriodTotal{{Period: "2024-01", Total: dec("5")}, {Period: "2024-03", Total: dec("17")}}
	if len(got) != len(want) {
		t.Fatalf("MonthlyTotals() = %+v", got)
	}
	for i := range want {
		if got[i].Period != want[i].Period || !got[i].Total.Equal(want[i].Total) {
			t.Errorf("MonthlyTotals()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	// The same instant belongs to April two hours east of UTC.
	east := time.FixedZone("UTC+2", 2*3600)
	if got := MonthlyTotals(txs[:1], east); got[0].Period != "2024-04" {
		t.Errorf("period in UTC+2 = %s, want 2024-04", got[0].Period)
	}
}
