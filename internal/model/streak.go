package model

import "time"

// RewardStreak tracks daily-claim continuity for one account.
// The row is created lazily on the first claim; LastClaimDate is the
// zero time until then. Dates are calendar days in UTC.
type RewardStreak struct {
	AccountID     string    `json:"account_id"`
	LastClaimDate time.Time `json:"last_claim_date"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	TotalClaims   int       `json:"total_claims"`
}

type StreakStatus struct {
	CanClaim      bool `json:"can_claim"`
	IsConsecutive bool `json:"is_consecutive"`
	WillBonus     bool `json:"will_bonus"`
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	TotalClaims   int  `json:"total_claims"`
}

type ClaimResult struct {
	Streak     int   `json:"streak"`
	Amount     int64 `json:"amount"`
	Bonus      bool  `json:"bonus"`
	NewBalance int64 `json:"new_balance"`
}
