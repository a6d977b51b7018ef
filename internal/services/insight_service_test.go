package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store/memory"
)

func newInsightService() (*InsightService, *memory.Store) {
	st := memory.New()
	svc := NewInsightService(st, nil, log.Discard())
	svc.clock = fixedClock
	return svc, st
}

func addTx(t *testing.T, st *memory.Store, id string, dir core.Direction, amount, category string) {
	t.Helper()
	err := st.CreateTransaction(context.Background(), core.Transaction{
		ID:        id,
		OwnerID:   owner,
		Direction: dir,
		Amount:    dec(amount),
		Category:  category,
		CreatedAt: fixedNow,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
}

func TestInsightService_EmptyPeriod(t *testing.T) {
	svc, _ := newInsightService()

	snap, err := svc.Overview(context.Background(), owner, "")
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if snap.Period != "2024-05" {
		t.Errorf("period = %s, want current month 2024-05", snap.Period)
	}
	if !snap.MonthlySummary.SavingsRate.IsZero() {
		t.Errorf("savingsRate = %s, want 0", snap.MonthlySummary.SavingsRate)
	}
	if len(snap.Recommendations) == 0 {
		t.Error("recommendations must never be empty")
	}
}

func TestInsightService_ComputeAndCache(t *testing.T) {
	ctx := context.Background()
	svc, st := newInsightService()

	addTx(t, st, "t1", core.Credit, "1000", "salary")
	addTx(t, st, "t2", core.Debit, "900", "rent")
	addTx(t, st, "t3", core.Debit, "50", "")

	snap, err := svc.Overview(ctx, owner, "2024-05")
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if !snap.MonthlySummary.Expenses.Equal(dec("950")) || !snap.MonthlySummary.Income.Equal(dec("1000")) {
		t.Errorf("summary = %+v", snap.MonthlySummary)
	}
	if !snap.SpendByCategory[core.UncategorizedCategory].Equal(dec("50")) {
		t.Errorf("spendByCategory = %v", snap.SpendByCategory)
	}
	if snap.Recommendations[0] != core.HighSpendRecommendation {
		t.Errorf("recommendations = %v", snap.Recommendations)
	}

	// Cached snapshots ignore new transactions until recalculated.
	addTx(t, st, "t4", core.Debit, "100", "rent")
	cached, err := svc.Overview(ctx, owner, "2024-05")
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if !cached.MonthlySummary.Expenses.Equal(dec("950")) {
		t.Errorf("cached expenses = %s, want 950", cached.MonthlySummary.Expenses)
	}

	first, err := svc.Recalculate(ctx, owner, "2024-05")
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	second, err := svc.Recalculate(ctx, owner, "2024-05")
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	if !first.MonthlySummary.Expenses.Equal(dec("1050")) {
		t.Errorf("recalculated expenses = %s, want 1050", first.MonthlySummary.Expenses)
	}
	if !first.MonthlySummary.Income.Equal(second.MonthlySummary.Income) ||
		!first.MonthlySummary.Expenses.Equal(second.MonthlySummary.Expenses) ||
		!first.MonthlySummary.SavingsRate.Equal(second.MonthlySummary.SavingsRate) {
		t.Errorf("Recalculate is not idempotent: %+v vs %+v", first.MonthlySummary, second.MonthlySummary)
	}
	if !sameSpend(first.SpendByCategory, second.SpendByCategory) {
		t.Errorf("spend by category changed: %v vs %v", first.SpendByCategory, second.SpendByCategory)
	}
	if !first.SpendByCategory["rent"].Equal(dec("1000")) {
		t.Errorf("rent spend = %s, want 1000", first.SpendByCategory["rent"])
	}

	recs, err := svc.Recommendations(ctx, owner, "2024-05")
	if err != nil || len(recs) == 0 {
		t.Errorf("Recommendations() = %v, %v", recs, err)
	}
}

func TestInsightService_InvalidPeriod(t *testing.T) {
	svc, _ := newInsightService()
	for _, p := range []string{"2024-13", "May", "2024-5"} {
		t.Run(p, func(t *testing.T) {
			_, err := svc.Overview(context.Background(), owner, p)
			wantKind(t, err, core.KindValidation)
		})
	}
}

func TestInsightService_OtherPeriodExcluded(t *testing.T) {
	svc, st := newInsightService()
	addTx(t, st, "t1", core.Debit, "10", "food")

	snap, err := svc.Compute(context.Background(), owner, "2024-04")
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !snap.MonthlySummary.Expenses.IsZero() {
		t.Errorf("April expenses = %s, want 0", snap.MonthlySummary.Expenses)
	}
}

func sameSpend(a, b map[string]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for category, amount := range a {
		other, ok := b[category]
		if !ok || !amount.Equal(other) {
			return false
		}
	}
	return true
}
