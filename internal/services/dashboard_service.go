package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

const (
	dashboardExpenses      = 5
	dashboardBills         = 5
	dashboardGoals         = 3
	dashboardNotifications = 5
)

// DefaultRecommendations are shown before the first insight snapshot exists.
var DefaultRecommendations = []string{
	"Review entertainment subscriptions to trim costs",
	"Add a recurring transfer toward your goals",
}

type (
	DashboardTotals struct {
		MonthlySpend decimal.Decimal `json:"monthlySpend"`
		Outstanding  decimal.Decimal `json:"outstanding"`
		SavingsRate  decimal.Decimal `json:"savingsRate"`
	}

	DashboardSummary struct {
		RecentExpenses   []core.Expense      `json:"recentExpenses"`
		OutstandingBills []core.BillView     `json:"outstandingBills"`
		Goals            []core.SavingsGoal  `json:"goals"`
		Notifications    []core.Notification `json:"notifications"`
		MonthlyTotals    []core.PeriodTotal  `json:"monthlyTotals"`
		Summary          DashboardTotals     `json:"summary"`
		Recommendations  []string            `json:"recommendations"`
	}

	QuickAction struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Href    string `json:"href"`
		Variant string `json:"variant"`
	}
)

// DashboardService reads a little of everything for the landing page. It
// never computes insights; it only shows a snapshot that already exists.
type DashboardService struct {
	store  store.Store
	loc    *time.Location
	logger *log.Logger
	clock  clock
}

func NewDashboardService(st store.Store, loc *time.Location, logger *log.Logger) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{store: st, loc: loc, logger: logger.WithComponent(log.ComponentDashboard)}
}

// Summary runs the independent reads concurrently; the first failure
// cancels the rest.
func (s *DashboardService) Summary(ctx context.Context, ownerID string) (DashboardSummary, error) {
	period := core.PeriodOf(s.clock.now(), s.loc)

	var (
		expenses      []core.Expense
		bills         []core.Bill
		goals         []core.SavingsGoal
		notifications []core.Notification
		txs           []core.Transaction
		snapshot      *core.InsightSnapshot
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(ctx, ownerID, store.ExpenseFilter{Limit: dashboardExpenses})
		return wrapIf(err, "recent expenses")
	})
	g.Go(func() error {
		var err error
		bills, err = s.store.ListBills(ctx, ownerID, dashboardBills)
		return wrapIf(err, "bills")
	})
	g.Go(func() error {
		var err error
		goals, err = s.store.ListGoals(ctx, ownerID, dashboardGoals)
		return wrapIf(err, "goals")
	})
	g.Go(func() error {
		var err error
		notifications, err = s.store.ListNotifications(ctx, ownerID, store.NotificationFilter{UnreadOnly: true, Limit: dashboardNotifications})
		return wrapIf(err, "notifications")
	})
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(ctx, ownerID, store.TransactionFilter{})
		return wrapIf(err, "transactions")
	})
	g.Go(func() error {
		snap, err := s.store.GetSnapshot(ctx, ownerID, period)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return wrapIf(err, "insight snapshot")
		}
		snapshot = &snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardSummary{}, err
	}

	totals := MonthlyTotals(txs, s.loc)
	out := DashboardSummary{
		RecentExpenses:   expenses,
		OutstandingBills: make([]core.BillView, 0, len(bills)),
		Goals:            goals,
		Notifications:    notifications,
		MonthlyTotals:    totals,
		Summary: DashboardTotals{
			MonthlySpend: decimal.Zero,
			Outstanding:  decimal.Zero,
			SavingsRate:  decimal.Zero,
		},
		Recommendations: DefaultRecommendations,
	}

	for _, b := range bills {
		v := b.View()
		out.OutstandingBills = append(out.OutstandingBills, v)
		if v.Status == core.BillOpen {
			out.Summary.Outstanding = out.Summary.Outstanding.Add(b.Total)
		}
	}
	for _, t := range totals {
		if t.Period == period {
			out.Summary.MonthlySpend = t.Total
		}
	}
	if snapshot != nil {
		out.Summary.SavingsRate = snapshot.MonthlySummary.SavingsRate
		out.Recommendations = snapshot.Recommendations
	}
	return out, nil
}

// MonthlyTotals sums transaction amounts per period, oldest period first.
func MonthlyTotals(txs []core.Transaction, loc *time.Location) []core.PeriodTotal {
	sums := make(map[core.Period]decimal.Decimal)
	for _, tx := range txs {
		p := core.PeriodOf(tx.CreatedAt, loc)
		sums[p] = sums[p].Add(tx.Amount)
	}
	out := make([]core.PeriodTotal, 0, len(sums))
	for p, total := range sums {
		out = append(out, core.PeriodTotal{Period: p, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// QuickActions are the static shortcuts shown on the dashboard.
func (s *DashboardService) QuickActions() []QuickAction {
	return []QuickAction{
		{ID: "add-expense", Label: "Add Expense", Href: "/app/expenses/new", Variant: "primary"},
		{ID: "split-bill", Label: "Split Bill", Href: "/app/bills/new", Variant: "secondary"},
		{ID: "new-goal", Label: "New Savings Goal", Href: "/app/savings/new", Variant: "outline"},
		{ID: "manage-reminders", Label: "Manage Reminders", Href: "/app/notifications", Variant: "ghost"},
	}
}

func wrapIf(err error, what string) error {
	if err != nil {
		return fmt.Errorf("dashboard %s: %w", what, err)
	}
	return nil
}
