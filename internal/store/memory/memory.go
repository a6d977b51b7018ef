// Package memory is an in-process implementation of store.Store.
// Records are copied on the way in and out so callers never share slices
// with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
	"spendwise/internal/store"
)

type snapshotKey struct {
	owner  string
	period core.Period
}

type Store struct {
	mu            sync.RWMutex
	expenses      map[string]core.Expense
	transactions  map[string]core.Transaction
	bills         map[string]core.Bill
	goals         map[string]core.SavingsGoal
	notifications map[string]core.Notification
	snapshots     map[snapshotKey]core.InsightSnapshot
	users         map[string]core.User
	emails        map[string]string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		expenses:      make(map[string]core.Expense),
		transactions:  make(map[string]core.Transaction),
		bills:         make(map[string]core.Bill),
		goals:         make(map[string]core.SavingsGoal),
		notifications: make(map[string]core.Notification),
		snapshots:     make(map[snapshotKey]core.InsightSnapshot),
		users:         make(map[string]core.User),
		emails:        make(map[string]string),
	}
}

func (s *Store) Close() error { return nil }

// Expenses

func (s *Store) CreateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; ok {
		return store.ErrConflict
	}
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (s *Store) GetExpense(_ context.Context, ownerID, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.Expense{}, store.ErrNotFound
	}
	return cloneExpense(e), nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expenses[e.ID]
	if !ok || cur.OwnerID != e.OwnerID {
		return store.ErrNotFound
	}
	s.expenses[e.ID] = cloneExpense(e)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, ownerID string, f store.ExpenseFilter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if !within(e.Date, f.From, f.To) {
			continue
		}
		out = append(out, cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return limit(out, f.Limit), nil
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[tx.ID]; ok {
		return store.ErrConflict
	}
	s.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return core.Transaction{}, store.ErrNotFound
	}
	return cloneTransaction(tx), nil
}

func (s *Store) UpdateTransactionNotes(_ context.Context, ownerID, id, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return store.ErrNotFound
	}
	tx.Notes = notes
	s.transactions[id] = tx
	return nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.OwnerID != ownerID {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if !within(tx.CreatedAt, f.From, f.To) {
			continue
		}
		out = append(out, cloneTransaction(tx))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return limit(out, f.Limit), nil
}

func (s *Store) SyncExpenseTransactions(_ context.Context, ownerID, expenseID string, ts core.TransactionSync) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, tx := range s.transactions {
		if tx.OwnerID != ownerID || tx.SourceExpenseID != expenseID {
			continue
		}
		ts.Apply(&tx)
		s.transactions[id] = tx
		n++
	}
	return n, nil
}

func (s *Store) DeleteExpenseTransactions(_ context.Context, ownerID, expenseID string) (int, error) {
	return s.deleteTransactions(func(tx core.Transaction) bool {
		return tx.OwnerID == ownerID && tx.SourceExpenseID == expenseID
	}), nil
}

func (s *Store) DeleteBillTransactions(_ context.Context, ownerID, billID string) (int, error) {
	return s.deleteTransactions(func(tx core.Transaction) bool {
		return tx.OwnerID == ownerID && tx.SourceBillID == billID
	}), nil
}

func (s *Store) deleteTransactions(match func(core.Transaction) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, tx := range s.transactions {
		if match(tx) {
			delete(s.transactions, id)
			n++
		}
	}
	return n
}

// Bills

func (s *Store) CreateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[b.ID]; ok {
		return store.ErrConflict
	}
	s.bills[b.ID] = cloneBill(b)
	return nil
}

func (s *Store) GetBill(_ context.Context, ownerID, id string) (core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok || b.OwnerID != ownerID {
		return core.Bill{}, store.ErrNotFound
	}
	return cloneBill(b), nil
}

func (s *Store) UpdateBill(_ context.Context, b core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bills[b.ID]
	if !ok || cur.OwnerID != b.OwnerID {
		return store.ErrNotFound
	}
	s.bills[b.ID] = cloneBill(b)
	return nil
}

func (s *Store) DeleteBill(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}

func (s *Store) ListBills(_ context.Context, ownerID string, n int) ([]core.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Bill, 0)
	for _, b := range s.bills {
		if b.OwnerID == ownerID {
			out = append(out, cloneBill(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di == nil && dj == nil:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return limit(out, n), nil
}

// Savings goals

func (s *Store) CreateGoal(_ context.Context, g core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; ok {
		return store.ErrConflict
	}
	s.goals[g.ID] = cloneGoal(g)
	return nil
}

func (s *Store) GetGoal(_ context.Context, ownerID, id string) (core.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.SavingsGoal{}, store.ErrNotFound
	}
	return cloneGoal(g), nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.goals[g.ID]
	if !ok || cur.OwnerID != g.OwnerID {
		return store.ErrNotFound
	}
	s.goals[g.ID] = cloneGoal(g)
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return store.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) ListGoals(_ context.Context, ownerID string, n int) ([]core.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.SavingsGoal, 0)
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, cloneGoal(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, n), nil
}

// Notifications

func (s *Store) CreateNotifications(_ context.Context, ns []core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range ns {
		if _, ok := s.notifications[n.ID]; ok {
			return store.ErrConflict
		}
	}
	for _, n := range ns {
		s.notifications[n.ID] = n
	}
	return nil
}

func (s *Store) MarkNotificationRead(_ context.Context, ownerID, id string) (core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.OwnerID != ownerID {
		return core.Notification{}, store.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, ownerID string, f store.NotificationFilter) ([]core.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Notification, 0)
	for _, n := range s.notifications {
		if n.OwnerID != ownerID || (f.UnreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return limit(out, f.Limit), nil
}

// Insight snapshots

func (s *Store) GetSnapshot(_ context.Context, ownerID string, period core.Period) (core.InsightSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[snapshotKey{ownerID, period}]
	if !ok {
		return core.InsightSnapshot{}, store.ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

func (s *Store) UpsertSnapshot(_ context.Context, snap core.InsightSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshotKey{snap.OwnerID, snap.Period}] = cloneSnapshot(snap)
	return nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := s.emails[email]; ok {
		return store.ErrConflict
	}
	if _, ok := s.users[u.ID]; ok {
		return store.ErrConflict
	}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	oldEmail, newEmail := strings.ToLower(cur.Email), strings.ToLower(u.Email)
	if oldEmail != newEmail {
		if _, taken := s.emails[newEmail]; taken {
			return store.ErrConflict
		}
		delete(s.emails, oldEmail)
		s.emails[newEmail] = u.ID
	}
	s.users[u.ID] = u
	return nil
}

func within(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func cloneExpense(e core.Expense) core.Expense {
	e.SplitWith = clone(e.SplitWith)
	return e
}

func cloneTransaction(tx core.Transaction) core.Transaction {
	tx.ParticipantIDs = clone(tx.ParticipantIDs)
	return tx
}

func cloneBill(b core.Bill) core.Bill {
	b.Participants = clone(b.Participants)
	if b.DueDate != nil {
		d := *b.DueDate
		b.DueDate = &d
	}
	return b
}

func cloneGoal(g core.SavingsGoal) core.SavingsGoal {
	g.History = clone(g.History)
	g.Tips = clone(g.Tips)
	if g.Deadline != nil {
		d := *g.Deadline
		g.Deadline = &d
	}
	return g
}

func cloneSnapshot(snap core.InsightSnapshot) core.InsightSnapshot {
	byCategory := make(map[string]decimal.Decimal, len(snap.SpendByCategory))
	for k, v := range snap.SpendByCategory {
		byCategory[k] = v
	}
	snap.SpendByCategory = byCategory
	snap.Recommendations = clone(snap.Recommendations)
	return snap
}
