package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

// InsightLedger is the storage an InsightService needs.
type InsightLedger interface {
	store.TransactionStore
	store.InsightStore
}

// InsightService aggregates a period's transactions into a snapshot and
// caches it per owner and period. Snapshots are never invalidated by ledger
// writes; Recalculate refreshes them.
type InsightService struct {
	ledger InsightLedger
	loc    *time.Location
	logger *log.Logger
	clock  clock
}

func NewInsightService(ledger InsightLedger, loc *time.Location, logger *log.Logger) *InsightService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &InsightService{ledger: ledger, loc: loc, logger: logger.WithComponent(log.ComponentInsight)}
}

// resolvePeriod defaults an empty period to the current month.
func (s *InsightService) resolvePeriod(period string) (core.Period, error) {
	if period == "" {
		return core.PeriodOf(s.clock.now(), s.loc), nil
	}
	return core.ParsePeriod(period)
}

// Compute aggregates the period and overwrites its snapshot.
func (s *InsightService) Compute(ctx context.Context, ownerID, period string) (core.InsightSnapshot, error) {
	p, err := s.resolvePeriod(period)
	if err != nil {
		return core.InsightSnapshot{}, err
	}
	start, end, err := p.Range(s.loc)
	if err != nil {
		return core.InsightSnapshot{}, err
	}

	txs, err := s.ledger.ListTransactions(ctx, ownerID, store.TransactionFilter{From: &start, To: &end})
	if err != nil {
		return core.InsightSnapshot{}, fmt.Errorf("list transactions for %s: %w", p, err)
	}

	snapshot := core.Summarize(ownerID, p, txs, s.clock.now())
	if err := s.ledger.UpsertSnapshot(ctx, snapshot); err != nil {
		return core.InsightSnapshot{}, fmt.Errorf("save insight snapshot %s: %w", p, err)
	}

	s.logger.DebugContext(ctx, "Insights computed",
		log.FieldPeriod, p.String(), log.FieldOwnerID, ownerID, log.FieldCount, len(txs))
	return snapshot, nil
}

// Overview returns the cached snapshot, computing it on first read.
func (s *InsightService) Overview(ctx context.Context, ownerID, period string) (core.InsightSnapshot, error) {
	p, err := s.resolvePeriod(period)
	if err != nil {
		return core.InsightSnapshot{}, err
	}
	snapshot, err := s.ledger.GetSnapshot(ctx, ownerID, p)
	switch {
	case err == nil:
		return snapshot, nil
	case errors.Is(err, store.ErrNotFound):
		return s.Compute(ctx, ownerID, string(p))
	default:
		return core.InsightSnapshot{}, fmt.Errorf("get insight snapshot %s: %w", p, err)
	}
}

// Recommendations returns only the recommendations of Overview.
func (s *InsightService) Recommendations(ctx context.Context, ownerID, period string) ([]string, error) {
	snapshot, err := s.Overview(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	return snapshot.Recommendations, nil
}

// Recalculate always recomputes.
func (s *InsightService) Recalculate(ctx context.Context, ownerID, period string) (core.InsightSnapshot, error) {
	return s.Compute(ctx, ownerID, period)
}
