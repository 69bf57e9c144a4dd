package service

import (
	"context"
	"strconv"
	"time"

	"golbucks/internal/model"
)

// RewardConfig holds the daily-claim reward amounts. Reaching BonusDays
// consecutive claims pays DailyAmount+BonusAmount as a single combined
// ledger credit.
type RewardConfig struct {
	DailyAmount int64
	BonusDays   int
	BonusAmount int64
}

func DefaultRewardConfig() RewardConfig {
	return RewardConfig{DailyAmount: 10, BonusDays: 7, BonusAmount: 20}
}

// StreakEngine implements RewardStreakEngine. Claim locks the streak
// row and disburses through the ledger inside the same unit of work,
// so a failed credit also rolls back the streak update.
type StreakEngine struct {
	co      Coordinator
	streaks StreakStore
	ledger  BalanceLedger
	bus     MessageBus
	cfg     RewardConfig
	now     func() time.Time
}

func NewStreakEngine(co Coordinator, streaks StreakStore, ledger BalanceLedger, bus MessageBus, cfg RewardConfig) *StreakEngine {
	return &StreakEngine{
		co:      co,
		streaks: streaks,
		ledger:  ledger,
		bus:     bus,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Status is a lock-free read; a concurrent claim may make it stale,
// which Claim re-validates under lock.
func (e *StreakEngine) Status(ctx context.Context, accountID string) (*model.StreakStatus, error) {
	streak, err := e.streaks.Find(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		streak = &model.RewardStreak{AccountID: accountID}
	}

	today := dateOf(e.now())
	consecutive := !streak.LastClaimDate.IsZero() && daysBetween(streak.LastClaimDate, today) == 1

	return &model.StreakStatus{
		CanClaim:      streak.LastClaimDate.IsZero() || daysBetween(streak.LastClaimDate, today) != 0,
		IsConsecutive: consecutive,
		WillBonus:     consecutive && streak.CurrentStreak == e.cfg.BonusDays-1,
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		TotalClaims:   streak.TotalClaims,
	}, nil
}

func (e *StreakEngine) Claim(ctx context.Context, accountID string) (*model.ClaimResult, error) {
	var result model.ClaimResult

	err := e.co.Atomic(ctx, func(ctx context.Context) error {
		streak, err := e.streaks.Lock(ctx, accountID)
		if err != nil {
			return err
		}

		now := e.now()
		today := dateOf(now)
		if !streak.LastClaimDate.IsZero() && daysBetween(streak.LastClaimDate, today) == 0 {
			return model.ErrAlreadyClaimed
		}

		newStreak := 1
		if !streak.LastClaimDate.IsZero() && daysBetween(streak.LastClaimDate, today) == 1 {
			newStreak = streak.CurrentStreak + 1
		}

		amount := e.cfg.DailyAmount
		reason := model.ReasonDailyReward
		bonus := newStreak == e.cfg.BonusDays
		if bonus {
			amount += e.cfg.BonusAmount
			reason = model.ReasonStreakBonus
		}

		newBalance, err := e.ledger.Credit(ctx, accountID, amount, reason, map[string]string{
			"streak": strconv.Itoa(newStreak),
		})
		if err != nil {
			return err
		}

		streak.LastClaimDate = today
		streak.CurrentStreak = newStreak
		if newStreak > streak.LongestStreak {
			streak.LongestStreak = newStreak
		}
		streak.TotalClaims++
		if err := e.streaks.Update(ctx, streak); err != nil {
			return err
		}

		result = model.ClaimResult{
			Streak:     newStreak,
			Amount:     amount,
			Bonus:      bonus,
			NewBalance: newBalance,
		}
		e.co.AfterCommit(ctx, func() {
			publishJSON(e.bus, model.TopicRewardClaimed, model.RewardClaimedEvent{
				AccountID: accountID,
				Streak:    result.Streak,
				Amount:    result.Amount,
				Bonus:     result.Bonus,
				ClaimedAt: now,
			})
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// dateOf truncates t to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b. Both
// arguments must already be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
