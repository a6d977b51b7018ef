package sqlstore

import (
	"context"
	"fmt"

	"spendwise/internal/core"
)

func (s *Store) GetSnapshot(ctx context.Context, ownerID string, period core.Period) (core.InsightSnapshot, error) {
	var (
		snap                                 core.InsightSnapshot
		byCategory, summary, recommendations string
		generated                            int64
	)
	err := s.queryRow(ctx, `SELECT owner_id, period, spend_by_category, monthly_summary, recommendations, generated_at
		FROM insight_snapshots WHERE owner_id = ? AND period = ?`, ownerID, string(period)).
		Scan(&snap.OwnerID, &snap.Period, &byCategory, &summary, &recommendations, &generated)
	if err != nil {
		return core.InsightSnapshot{}, notFound(err)
	}

	snap.GeneratedAt = fromMillis(generated)
	if err := decodeJSON(byCategory, &snap.SpendByCategory); err != nil {
		return core.InsightSnapshot{}, err
	}
	if err := decodeJSON(summary, &snap.MonthlySummary); err != nil {
		return core.InsightSnapshot{}, err
	}
	if err := decodeJSON(recommendations, &snap.Recommendations); err != nil {
		return core.InsightSnapshot{}, err
	}
	return snap, nil
}

// UpsertSnapshot replaces any snapshot with the same owner and period.
func (s *Store) UpsertSnapshot(ctx context.Context, snap core.InsightSnapshot) error {
	byCategory, err := encodeJSON(snap.SpendByCategory)
	if err != nil {
		return err
	}
	summary, err := encodeJSON(snap.MonthlySummary)
	if err != nil {
		return err
	}
	recommendations, err := encodeJSON(nonNil(snap.Recommendations))
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, `INSERT INTO insight_snapshots
		(owner_id, period, spend_by_category, monthly_summary, recommendations, generated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, period) DO UPDATE SET
			spend_by_category = excluded.spend_by_category,
			monthly_summary = excluded.monthly_summary,
			recommendations = excluded.recommendations,
			generated_at = excluded.generated_at`,
		snap.OwnerID, string(snap.Period), byCategory, summary, recommendations, millis(snap.GeneratedAt))
	if err != nil {
		return fmt.Errorf("upsert insight snapshot: %w", err)
	}
	return nil
}
