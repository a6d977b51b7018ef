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

// BillLedger is the storage a BillService needs.
type BillLedger interface {
	store.BillStore
	store.TransactionStore
}

type CreateBillInput struct {
	Description  string
	Total        decimal.Decimal
	Participants []core.Participant
	DueDate      *time.Time
}

type BillService struct {
	ledger BillLedger
	logger *log.Logger
	events *log.StructuredLogger
	clock  clock
}

func NewBillService(ledger BillLedger, logger *log.Logger) *BillService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentBill)
	return &BillService{
		ledger: ledger,
		logger: logger,
		events: log.NewStructuredLogger(logger),
	}
}

// Create validates the share total and stores the bill. Participants
// without an id get a generated one so every share can be settled.
func (s *BillService) Create(ctx context.Context, ownerID string, in CreateBillInput) (core.BillView, error) {
	now := s.clock.now()
	participants := make([]core.Participant, len(in.Participants))
	for i, p := range in.Participants {
		p.Name = strings.TrimSpace(p.Name)
		p.ParticipantID = strings.TrimSpace(p.ParticipantID)
		if p.ParticipantID == "" {
			p.ParticipantID = newID()
		}
		participants[i] = p
	}

	b := core.Bill{
		ID:           newID(),
		OwnerID:      ownerID,
		Description:  strings.TrimSpace(in.Description),
		Total:        in.Total,
		Participants: participants,
		DueDate:      in.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := b.Validate(); err != nil {
		return core.BillView{}, err
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p.ParticipantID] {
			return core.BillView{}, core.Validationf("participant %s is listed twice", p.ParticipantID)
		}
		seen[p.ParticipantID] = true
	}

	if err := s.ledger.CreateBill(ctx, b); err != nil {
		return core.BillView{}, fmt.Errorf("create bill: %w", err)
	}
	return b.View(), nil
}

// Get returns one bill with its derived status.
func (s *BillService) Get(ctx context.Context, ownerID, id string) (core.BillView, error) {
	b, err := s.ledger.GetBill(ctx, ownerID, id)
	if err != nil {
		return core.BillView{}, lookupErr(err, "get bill", "Bill not found")
	}
	return b.View(), nil
}

// List returns bills by due date. An empty status returns every bill;
// otherwise the filter applies to the derived status.
func (s *BillService) List(ctx context.Context, ownerID string, status core.BillStatus) ([]core.BillView, error) {
	if status != "" && !status.Valid() {
		return nil, core.Validationf("status must be one of open, settled")
	}
	bills, err := s.ledger.ListBills(ctx, ownerID, 0)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}

	views := make([]core.BillView, 0, len(bills))
	for _, b := range bills {
		v := b.View()
		if status != "" && v.Status != status {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// SettleShare marks one participant as settled. Settling twice is a no-op;
// the first settlement projects one credit transaction for the share.
func (s *BillService) SettleShare(ctx context.Context, ownerID, billID, participantID string) (core.BillView, error) {
	b, err := s.ledger.GetBill(ctx, ownerID, billID)
	if err != nil {
		return core.BillView{}, lookupErr(err, "get bill", "Bill not found")
	}
	p := b.Participant(participantID)
	if p == nil {
		return core.BillView{}, core.NotFoundf("Participant not part of bill")
	}
	if p.Settled {
		return b.View(), nil
	}

	now := s.clock.now()
	p.Settled = true
	share := p.Share
	b.UpdatedAt = now
	if err := s.ledger.UpdateBill(ctx, b); err != nil {
		return core.BillView{}, lookupErr(err, "update bill", "Bill not found")
	}

	tx := core.Transaction{
		ID:             newID(),
		OwnerID:        ownerID,
		SourceBillID:   b.ID,
		Direction:      core.Credit,
		Amount:         share,
		Category:       core.BillsCategory,
		ParticipantIDs: []string{participantID},
		Notes:          b.Description,
		CreatedAt:      now,
	}
	if err := s.ledger.CreateTransaction(ctx, tx); err != nil {
		return core.BillView{}, fmt.Errorf("record settlement of bill %s: %w", b.ID, err)
	}

	s.events.LogBillSettled(ctx, ownerID, b.ID, participantID, share)
	return b.View(), nil
}

// Delete removes the bill and its settlement transactions.
func (s *BillService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.ledger.GetBill(ctx, ownerID, id); err != nil {
		return lookupErr(err, "get bill", "Bill not found")
	}
	if err := s.ledger.DeleteBill(ctx, ownerID, id); err != nil {
		return lookupErr(err, "delete bill", "Bill not found")
	}
	n, err := s.ledger.DeleteBillTransactions(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transactions of bill %s: %w", id, err)
	}
	s.logger.DebugContext(ctx, "Bill deleted", log.FieldBillID, id, log.FieldCount, n)
	return nil
}
