package model

import "time"

// Topics published after a unit of work commits. Subscribers (the
// notification worker) must tolerate duplicates; delivery failures
// never affect the committed transaction.
const (
	TopicLedgerEntry     = "golbucks.ledger.entry"
	TopicRewardClaimed   = "golbucks.rewards.claimed"
	TopicEventRegistered = "golbucks.events.registered"
	TopicEventCancelled  = "golbucks.events.cancelled"
	TopicContributed     = "golbucks.billsupport.contributed"
	TopicCampaignFunded  = "golbucks.billsupport.approved"
)

type LedgerEntryEvent struct {
	AccountID        string    `json:"account_id"`
	Delta            int64     `json:"delta"`
	ResultingBalance int64     `json:"resulting_balance"`
	ReasonCode       string    `json:"reason_code"`
	CreatedAt        time.Time `json:"created_at"`
}

type RewardClaimedEvent struct {
	AccountID string    `json:"account_id"`
	Streak    int       `json:"streak"`
	Amount    int64     `json:"amount"`
	Bonus     bool      `json:"bonus"`
	ClaimedAt time.Time `json:"claimed_at"`
}

type RegistrationEvent struct {
	AccountID  string `json:"account_id"`
	EventID    string `json:"event_id"`
	AccessCode string `json:"access_code,omitempty"`
	Rewarded   bool   `json:"rewarded"`
}

type ContributionEvent struct {
	CampaignID     string         `json:"campaign_id"`
	ContributorID  string         `json:"contributor_id"`
	Amount         int64          `json:"amount"`
	CampaignStatus CampaignStatus `json:"campaign_status"`
}
