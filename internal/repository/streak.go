package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"golbucks/internal/model"
)

// StreakStore persists the one-row-per-account daily claim streaks.
type StreakStore struct {
	co *Coordinator
}

func NewStreakStore(co *Coordinator) *StreakStore {
	return &StreakStore{co: co}
}

// Lock creates the streak row on first use, then takes the row lock.
// The insert is idempotent so two first-ever claims race safely: both
// reach the FOR UPDATE and serialize there.
func (s *StreakStore) Lock(ctx context.Context, accountID string) (*model.RewardStreak, error) {
	db := s.co.db(ctx)

	_, err := db.Exec(ctx,
		`INSERT INTO reward_streaks (account_id) VALUES ($1)
		 ON CONFLICT (account_id) DO NOTHING`,
		accountID,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("ensure streak row for %s: %w", accountID, err))
	}

	streak := &model.RewardStreak{AccountID: accountID}
	var lastClaim *time.Time
	err = db.QueryRow(ctx,
		`SELECT last_claim_date, current_streak, longest_streak, total_claims
		 FROM reward_streaks WHERE account_id = $1 FOR UPDATE`,
		accountID,
	).Scan(&lastClaim, &streak.CurrentStreak, &streak.LongestStreak, &streak.TotalClaims)
	if err != nil {
		return nil, classify(fmt.Errorf("lock streak row for %s: %w", accountID, err))
	}
	if lastClaim != nil {
		streak.LastClaimDate = asDate(*lastClaim)
	}
	return streak, nil
}

func (s *StreakStore) Find(ctx context.Context, accountID string) (*model.RewardStreak, error) {
	streak := &model.RewardStreak{AccountID: accountID}
	var lastClaim *time.Time
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT last_claim_date, current_streak, longest_streak, total_claims
		 FROM reward_streaks WHERE account_id = $1`,
		accountID,
	).Scan(&lastClaim, &streak.CurrentStreak, &streak.LongestStreak, &streak.TotalClaims)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("read streak for %s: %w", accountID, err))
	}
	if lastClaim != nil {
		streak.LastClaimDate = asDate(*lastClaim)
	}
	return streak, nil
}

func (s *StreakStore) Update(ctx context.Context, streak *model.RewardStreak) error {
	_, err := s.co.db(ctx).Exec(ctx,
		`UPDATE reward_streaks
		 SET last_claim_date = $2, current_streak = $3, longest_streak = $4, total_claims = $5
		 WHERE account_id = $1`,
		streak.AccountID, streak.LastClaimDate, streak.CurrentStreak, streak.LongestStreak, streak.TotalClaims,
	)
	if err != nil {
		return classify(fmt.Errorf("update streak for %s: %w", streak.AccountID, err))
	}
	return nil
}

// asDate normalizes a scanned DATE column to a UTC midnight, which is
// what the streak arithmetic expects.
func asDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
