package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

func TestExpensesScopedByOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	e := core.Expense{ID: "e1", OwnerID: "alice", Title: "t", Amount: decimal.NewFromInt(5), Category: "food", Type: core.Personal, Date: now}
	if err := s.CreateExpense(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateExpense(ctx, e); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate create: got %v, want ErrConflict", err)
	}

	if _, err := s.GetExpense(ctx, "bob", "e1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign read: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteExpense(ctx, "bob", "e1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("foreign delete: got %v, want ErrNotFound", err)
	}
	got, err := s.GetExpense(ctx, "alice", "e1")
	if err != nil || got.Title != "t" {
		t.Fatalf("get: %+v %v", got, err)
	}
}

func TestListExpensesFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }

	seed := []core.Expense{
		{ID: "a", Category: "food", Type: core.Personal, Date: day(1)},
		{ID: "b", Category: "food", Type: core.Group, Date: day(5)},
		{ID: "c", Category: "rent", Type: core.Personal, Date: day(3)},
	}
	for _, e := range seed {
		e.Title, e.Amount = "x", decimal.NewFromInt(1)
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	from := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 5, 23, 59, 59, 0, time.UTC)
	tests := []struct {
		name string
		f    store.ExpenseFilter
		want []string
	}{
		{"all newest first", store.ExpenseFilter{}, []string{"b", "c", "a"}},
		{"category", store.ExpenseFilter{Category: "food"}, []string{"b", "a"}},
		{"type", store.ExpenseFilter{Type: core.Personal}, []string{"c", "a"}},
		{"range inclusive", store.ExpenseFilter{From: &from, To: &to}, []string{"b", "c"}},
		{"limit", store.ExpenseFilter{Limit: 1}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListExpenses(ctx, "", tt.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d expenses, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSyncAndDeleteTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	txs := []core.Transaction{
		{ID: "t1", SourceExpenseID: "e1", Direction: core.Debit, Amount: decimal.NewFromInt(50), Category: "food"},
		{ID: "t2", SourceExpenseID: "e2", Direction: core.Debit, Amount: decimal.NewFromInt(20), Category: "food"},
		{ID: "t3", SourceBillID: "b1", Direction: core.Credit, Amount: decimal.NewFromInt(150), Category: "bills"},
	}
	for _, tx := range txs {
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.SyncExpenseTransactions(ctx, "", "e1", core.TransactionSync{Amount: decimal.NewFromInt(75), Category: "dining"})
	if err != nil || n != 1 {
		t.Fatalf("sync: n=%d err=%v", n, err)
	}
	t1, _ := s.GetTransaction(ctx, "", "t1")
	if !t1.Amount.Equal(decimal.NewFromInt(75)) || t1.Category != "dining" {
		t.Errorf("t1 not synced: %+v", t1)
	}

	if n, _ := s.DeleteExpenseTransactions(ctx, "", "e1"); n != 1 {
		t.Errorf("deleted %d expense transactions, want 1", n)
	}
	if n, _ := s.DeleteBillTransactions(ctx, "", "b1"); n != 1 {
		t.Errorf("deleted %d bill transactions, want 1", n)
	}
	rest, _ := s.ListTransactions(ctx, "", store.TransactionFilter{})
	if len(rest) != 1 || rest[0].ID != "t2" {
		t.Errorf("remaining = %+v", rest)
	}
}

func TestListBillsDueDateOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := func(day int) *time.Time {
		v := time.Date(2025, 4, day, 0, 0, 0, 0, time.UTC)
		return &v
	}
	for _, b := range []core.Bill{{ID: "none"}, {ID: "late", DueDate: d(20)}, {ID: "early", DueDate: d(2)}} {
		if err := s.CreateBill(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	bills, err := s.ListBills(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"early", "late", "none"}
	for i, id := range want {
		if bills[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, bills[i].ID, id)
		}
	}
}

func TestSnapshotUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.GetSnapshot(ctx, "", "2025-01"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	first := core.InsightSnapshot{Period: "2025-01", Recommendations: []string{"one"}}
	second := core.InsightSnapshot{Period: "2025-01", Recommendations: []string{"two"}}
	if err := s.UpsertSnapshot(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertSnapshot(ctx, second); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSnapshot(ctx, "", "2025-01")
	if err != nil || got.Recommendations[0] != "two" {
		t.Fatalf("got %+v %v", got, err)
	}
	if len(s.snapshots) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(s.snapshots))
	}
}

func TestUsersUniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateUser(ctx, core.User{ID: "u1", Email: "a@b.io"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, core.User{ID: "u2", Email: "A@B.io"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	u, err := s.GetUserByEmail(ctx, "a@b.io")
	if err != nil || u.ID != "u1" {
		t.Fatalf("got %+v %v", u, err)
	}
}

func TestNotificationsUnreadFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	ns := []core.Notification{
		{ID: "n1", CreatedAt: now.Add(-time.Minute)},
		{ID: "n2", CreatedAt: now},
	}
	if err := s.CreateNotifications(ctx, ns); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MarkNotificationRead(ctx, "", "n2"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MarkNotificationRead(ctx, "", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	unread, _ := s.ListNotifications(ctx, "", store.NotificationFilter{UnreadOnly: true})
	if len(unread) != 1 || unread[0].ID != "n1" {
		t.Errorf("unread = %+v", unread)
	}
	all, _ := s.ListNotifications(ctx, "", store.NotificationFilter{})
	if len(all) != 2 || all[0].ID != "n2" {
		t.Errorf("all = %+v", all)
	}
}
