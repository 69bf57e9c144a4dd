package model

import "time"

// Reason codes recorded on ledger entries.
const (
	ReasonDailyReward = "daily_reward"
	ReasonStreakBonus = "daily_reward_bonus"
	ReasonEventReward = "event_reward"
	ReasonBillSupport = "bill_support"
)

type Account struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
}

// LedgerEntry is the immutable record of a single balance change.
// Rows are append-only; the running balance after the change is stored
// alongside the delta so history can be audited without replaying it.
type LedgerEntry struct {
	ID               int64             `json:"id"`
	AccountID        string            `json:"account_id"`
	Delta            int64             `json:"delta"`
	ResultingBalance int64             `json:"resulting_balance"`
	ReasonCode       string            `json:"reason_code"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
