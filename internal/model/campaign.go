package model

import "time"

type CampaignStatus string

const (
	CampaignPending   CampaignStatus = "pending"
	CampaignApproved  CampaignStatus = "approved"
	CampaignRejected  CampaignStatus = "rejected"
	CampaignPaid      CampaignStatus = "paid"
	CampaignCancelled CampaignStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentInternal PaymentMethod = "internal"
	PaymentExternal PaymentMethod = "external"
)

const ContributionCompleted = "completed"

// Campaign is a bill-support crowdfunding request. Contributions are
// only accepted while Status is pending; reaching the target flips it
// to approved. CollectedAmount never exceeds TargetAmount.
type Campaign struct {
	ID              string         `json:"id"`
	OwnerAccountID  string         `json:"owner_account_id"`
	TargetAmount    int64          `json:"target_amount"`
	CollectedAmount int64          `json:"collected_amount"`
	SupporterCount  int            `json:"supporter_count"`
	Status          CampaignStatus `json:"status"`
}

type Contribution struct {
	ID            string        `json:"id"`
	CampaignID    string        `json:"campaign_id"`
	ContributorID string        `json:"contributor_id"`
	Amount        int64         `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Reference     string        `json:"reference"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type ContributeResult struct {
	Contribution   Contribution   `json:"contribution"`
	CampaignStatus CampaignStatus `json:"campaign_status"`
	Remaining      int64          `json:"remaining"`
	NewBalance     *int64         `json:"new_balance,omitempty"`
}
