package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	HighSpendRecommendation = "Your spending is trending high this month. Revisit discretionary categories."
	BalancedRecommendation  = "Great balance! Consider increasing your automated savings transfer."
)

// highSpendRatio is the share of credits above which spending counts as high.
var highSpendRatio = decimal.RequireFromString("0.8")

type (
	// MonthlySummary holds the totals of one period.
	MonthlySummary struct {
		Income      decimal.Decimal `json:"income"`
		Expenses    decimal.Decimal `json:"expenses"`
		SavingsRate decimal.Decimal `json:"savingsRate"`
	}

	// InsightSnapshot is the cached insight computation for an owner and period.
	InsightSnapshot struct {
		OwnerID         string                     `json:"ownerId"`
		Period          Period                     `json:"period"`
		SpendByCategory map[string]decimal.Decimal `json:"spendByCategory"`
		MonthlySummary  MonthlySummary             `json:"monthlySummary"`
		Recommendations []string                   `json:"recommendations"`
		GeneratedAt     time.Time                  `json:"generatedAt"`
	}
)

// Summarize aggregates the transactions of one period.
// Category totals include both directions; the summary splits them.
func Summarize(ownerID string, period Period, txs []Transaction, now time.Time) InsightSnapshot {
	byCategory := make(map[string]decimal.Decimal)
	expenses, credits := decimal.Zero, decimal.Zero

	for _, tx := range txs {
		category := tx.Category
		if category == "" {
			category = UncategorizedCategory
		}
		byCategory[category] = byCategory[category].Add(tx.Amount)

		switch tx.Direction {
		case Debit:
			expenses = expenses.Add(tx.Amount)
		case Credit:
			credits = credits.Add(tx.Amount)
		}
	}

	return InsightSnapshot{
		OwnerID:         ownerID,
		Period:          period,
		SpendByCategory: byCategory,
		MonthlySummary: MonthlySummary{
			Income:      credits,
			Expenses:    expenses,
			SavingsRate: SavingsRate(credits, expenses),
		},
		Recommendations: Recommend(credits, expenses),
		GeneratedAt:     now,
	}
}

// SavingsRate is the percentage of credits not spent, floored at zero and
// rounded to two decimals. It is zero when there are no credits.
func SavingsRate(credits, expenses decimal.Decimal) decimal.Decimal {
	if credits.IsZero() {
		return decimal.Zero
	}
	rate := credits.Sub(expenses).Div(credits).Mul(hundred)
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate.Round(2)
}

// Recommend never returns an empty list.
func Recommend(credits, expenses decimal.Decimal) []string {
	var recs []string
	if expenses.GreaterThan(credits.Mul(highSpendRatio)) {
		recs = append(recs, HighSpendRecommendation)
	}
	if len(recs) == 0 {
		recs = append(recs, BalancedRecommendation)
	}
	return recs
}
