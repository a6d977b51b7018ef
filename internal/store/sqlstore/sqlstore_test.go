package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), SQLite, dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	got := pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?")
	if want := "SELECT a FROM t WHERE x = $1 AND y = $2"; got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
	lite := &Store{dialect: SQLite}
	if got := lite.rebind("x = ?"); got != "x = ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), SQLite, dbPath)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	date := time.Date(2025, 2, 14, 18, 30, 0, 0, time.UTC)

	e := core.Expense{
		ID:        "e1",
		OwnerID:   "u1",
		Title:     "Dinner",
		Amount:    dec("42.50"),
		Category:  "food",
		Type:      core.Group,
		Date:      date,
		Notes:     "valentine",
		SplitWith: []core.Split{{ParticipantID: "p1", Share: dec("21.25")}},
		CreatedAt: date,
		UpdatedAt: date,
	}
	if err := s.CreateExpense(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateExpense(ctx, e); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate: got %v, want ErrConflict", err)
	}

	got, err := s.GetExpense(ctx, "u1", "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(e.Amount) || got.Type != core.Group || !got.Date.Equal(date) {
		t.Errorf("unexpected expense: %+v", got)
	}
	if len(got.SplitWith) != 1 || !got.SplitWith[0].Share.Equal(dec("21.25")) {
		t.Errorf("unexpected splits: %+v", got.SplitWith)
	}

	if _, err := s.GetExpense(ctx, "other", "e1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign get: got %v, want ErrNotFound", err)
	}

	got.Amount = dec("50")
	if err := s.UpdateExpense(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	from := date.Add(-time.Hour)
	list, err := s.ListExpenses(ctx, "u1", store.ExpenseFilter{Category: "food", From: &from})
	if err != nil || len(list) != 1 || !list[0].Amount.Equal(dec("50")) {
		t.Fatalf("list: %+v %v", list, err)
	}

	if err := s.DeleteExpense(ctx, "u1", "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteExpense(ctx, "u1", "e1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestValidatedAmountsRoundTripExactly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	date := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, amount := range []string{"10.05", "0.01", "999999999999.99"} {
		e := core.Expense{
			ID:        "e" + amount,
			OwnerID:   "u1",
			Title:     "Cents",
			Amount:    dec(amount),
			Category:  "food",
			Type:      core.Personal,
			Date:      date.Add(time.Duration(i) * time.Minute),
			SplitWith: []core.Split{},
			CreatedAt: date,
			UpdatedAt: date,
		}
		if err := e.Validate(); err != nil {
			t.Fatalf("validate %s: %v", amount, err)
		}
		if err := s.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create %s: %v", amount, err)
		}
		got, err := s.GetExpense(ctx, "u1", e.ID)
		if err != nil {
			t.Fatalf("get %s: %v", amount, err)
		}
		if !got.Amount.Equal(e.Amount) {
			t.Errorf("amount = %s, want %s", got.Amount, amount)
		}
	}
}

func TestTransactionSyncAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	for _, tx := range []core.Transaction{
		{ID: "t1", SourceExpenseID: "e1", Direction: core.Debit, Amount: dec("50"), Category: "food", CreatedAt: now},
		{ID: "t2", SourceExpenseID: "e2", Direction: core.Debit, Amount: dec("10"), Category: "food", CreatedAt: now},
		{ID: "t3", SourceBillID: "b1", Direction: core.Credit, Amount: dec("150"), Category: "bills", CreatedAt: now},
	} {
		if err := s.CreateTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.SyncExpenseTransactions(ctx, "", "e1", core.TransactionSync{
		Amount: dec("75"), Category: "dining", Notes: "moved", ParticipantIDs: []string{"p1"},
	})
	if err != nil || n != 1 {
		t.Fatalf("sync: n=%d err=%v", n, err)
	}
	t1, err := s.GetTransaction(ctx, "", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !t1.Amount.Equal(dec("75")) || t1.Category != "dining" || t1.Notes != "moved" || len(t1.ParticipantIDs) != 1 {
		t.Errorf("t1 not synced: %+v", t1)
	}

	if err := s.UpdateTransactionNotes(ctx, "", "t2", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateTransactionNotes(ctx, "", "missing", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	if n, err := s.DeleteExpenseTransactions(ctx, "", "e1"); err != nil || n != 1 {
		t.Errorf("delete expense txs: n=%d err=%v", n, err)
	}
	if n, err := s.DeleteBillTransactions(ctx, "", "b1"); err != nil || n != 1 {
		t.Errorf("delete bill txs: n=%d err=%v", n, err)
	}
	rest, err := s.ListTransactions(ctx, "", store.TransactionFilter{})
	if err != nil || len(rest) != 1 || rest[0].Notes != "hello" {
		t.Errorf("remaining: %+v %v", rest, err)
	}
}

func TestBillOrderingAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	due := func(days int) *time.Time {
		v := now.AddDate(0, 0, days)
		return &v
	}
	participants := []core.Participant{{ParticipantID: "p1", Name: "Ann", Share: dec("10")}}

	for _, b := range []core.Bill{
		{ID: "none", Description: "x", Total: dec("10"), Participants: participants, CreatedAt: now, UpdatedAt: now},
		{ID: "late", Description: "x", Total: dec("10"), Participants: participants, DueDate: due(10), CreatedAt: now, UpdatedAt: now},
		{ID: "soon", Description: "x", Total: dec("10"), Participants: participants, DueDate: due(1), CreatedAt: now, UpdatedAt: now},
	} {
		if err := s.CreateBill(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	bills, err := s.ListBills(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"soon", "late", "none"} {
		if bills[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, bills[i].ID, id)
		}
	}

	b := bills[0]
	b.Participants[0].Settled = true
	b.ReminderSent = true
	if err := s.UpdateBill(ctx, b); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetBill(ctx, "", "soon")
	if err != nil {
		t.Fatal(err)
	}
	if !got.ReminderSent || !got.Participants[0].Settled || got.Status() != core.BillSettled {
		t.Errorf("bill not updated: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(*due(1)) {
		t.Errorf("due date = %v", got.DueDate)
	}
}

func TestGoalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	g := core.SavingsGoal{ID: "g1", Label: "Trip", TargetAmount: dec("1000"), CurrentAmount: dec("0"), CreatedAt: now, UpdatedAt: now}
	if err := s.CreateGoal(ctx, g); err != nil {
		t.Fatal(err)
	}
	if err := g.AddProgress(dec("600"), "bonus", now); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateGoal(ctx, g); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetGoal(ctx, "", "g1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CurrentAmount.Equal(dec("600")) || len(got.History) != 1 || len(got.Tips) != 1 {
		t.Errorf("unexpected goal: %+v", got)
	}
	if err := s.DeleteGoal(ctx, "", "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGoal(ctx, "", "g1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestNotificationsBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()
	ns := []core.Notification{
		{ID: "n1", Type: core.NotificationReminder, Title: "Bill Reminder", Body: "b", Channel: core.ChannelInApp, CreatedAt: now.Add(-time.Second)},
		{ID: "n2", Type: core.NotificationUrgent, Title: "Bill Reminder", Body: "b", Channel: core.ChannelInApp, CreatedAt: now},
	}
	if err := s.CreateNotifications(ctx, ns); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateNotifications(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	n, err := s.MarkNotificationRead(ctx, "", "n2")
	if err != nil || !n.Read {
		t.Fatalf("mark read: %+v %v", n, err)
	}
	if _, err := s.MarkNotificationRead(ctx, "", "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	unread, err := s.ListNotifications(ctx, "", store.NotificationFilter{UnreadOnly: true})
	if err != nil || len(unread) != 1 || unread[0].ID != "n1" {
		t.Errorf("unread: %+v %v", unread, err)
	}
}

func TestSnapshotUpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := core.Summarize("u1", "2025-03", nil, time.Now())
	if err := s.UpsertSnapshot(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := core.Summarize("u1", "2025-03", []core.Transaction{
		{Direction: core.Debit, Amount: dec("20"), Category: "food"},
	}, time.Now())
	if err := s.UpsertSnapshot(ctx, second); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM insight_snapshots WHERE owner_id = 'u1' AND period = '2025-03'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 snapshot row, got %d", count)
	}

	got, err := s.GetSnapshot(ctx, "u1", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if !got.SpendByCategory["food"].Equal(dec("20")) || len(got.Recommendations) == 0 {
		t.Errorf("unexpected snapshot: %+v", got)
	}
	if _, err := s.GetSnapshot(ctx, "u1", "2025-04"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUserUniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()
	u := core.User{
		ID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "h",
		AvatarColor: core.DefaultAvatarColor, Preferences: core.DefaultPreferences(), CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	u.ID = "u2"
	if err := s.CreateUser(ctx, u); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	got, err := s.GetUserByEmail(ctx, "ann@example.com")
	if err != nil || got.ID != "u1" || got.Preferences.Currency != "USD" {
		t.Fatalf("got %+v %v", got, err)
	}
}
