package core

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("no transactions", func(t *testing.T) {
		s := Summarize("u1", "2025-01", nil, now)
		if !s.MonthlySummary.SavingsRate.IsZero() {
			t.Errorf("savingsRate = %s, want 0", s.MonthlySummary.SavingsRate)
		}
		if len(s.Recommendations) == 0 {
			t.Fatal("recommendations must never be empty")
		}
		if len(s.SpendByCategory) != 0 {
			t.Errorf("spendByCategory = %v", s.SpendByCategory)
		}
		if !s.GeneratedAt.Equal(now) || s.Period != "2025-01" || s.OwnerID != "u1" {
			t.Errorf("unexpected header: %+v", s)
		}
	})

	t.Run("mixed directions", func(t *testing.T) {
		txs := []Transaction{
			{Direction: Credit, Amount: dec("1000"), Category: "salary"},
			{Direction: Debit, Amount: dec("200"), Category: "food"},
			{Direction: Debit, Amount: dec("50.5"), Category: "food"},
			{Direction: Debit, Amount: dec("10"), Category: ""},
		}
		s := Summarize("", "2025-01", txs, now)

		if got := s.SpendByCategory["food"]; !got.Equal(dec("250.5")) {
			t.Errorf("food = %s", got)
		}
		if got := s.SpendByCategory[UncategorizedCategory]; !got.Equal(dec("10")) {
			t.Errorf("uncategorized = %s", got)
		}
		if got := s.SpendByCategory["salary"]; !got.Equal(dec("1000")) {
			t.Errorf("salary = %s", got)
		}
		if !s.MonthlySummary.Expenses.Equal(dec("260.5")) {
			t.Errorf("expenses = %s", s.MonthlySummary.Expenses)
		}
		if !s.MonthlySummary.Income.Equal(dec("1000")) {
			t.Errorf("income = %s", s.MonthlySummary.Income)
		}
		if !s.MonthlySummary.SavingsRate.Equal(dec("73.95")) {
			t.Errorf("savingsRate = %s, want 73.95", s.MonthlySummary.SavingsRate)
		}
		if len(s.Recommendations) != 1 || s.Recommendations[0] != BalancedRecommendation {
			t.Errorf("recommendations = %v", s.Recommendations)
		}
	})

	t.Run("overspending", func(t *testing.T) {
		txs := []Transaction{
			{Direction: Credit, Amount: dec("100"), Category: "salary"},
			{Direction: Debit, Amount: dec("150"), Category: "rent"},
		}
		s := Summarize("", "2025-01", txs, now)
		if !s.MonthlySummary.SavingsRate.IsZero() {
			t.Errorf("savingsRate = %s, want floor 0", s.MonthlySummary.SavingsRate)
		}
		if len(s.Recommendations) != 1 || s.Recommendations[0] != HighSpendRecommendation {
			t.Errorf("recommendations = %v", s.Recommendations)
		}
	})
}

func TestSavingsRateRounding(t *testing.T) {
	got := SavingsRate(dec("3"), dec("1"))
	if !got.Equal(dec("66.67")) {
		t.Errorf("SavingsRate = %s, want 66.67", got)
	}
}
