package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"golbucks/internal/model"
)

// Pool implements ContributionPool. All validation and the total
// increment run against the campaign row under an exclusive lock; two
// concurrent contributions can never jointly overshoot the target
// because the second one re-reads the updated collected amount.
type Pool struct {
	co        Coordinator
	campaigns CampaignStore
	ledger    BalanceLedger
	bus       MessageBus
	now       func() time.Time
	newID     func() string
}

func NewPool(co Coordinator, campaigns CampaignStore, ledger BalanceLedger, bus MessageBus) *Pool {
	return &Pool{
		co:        co,
		campaigns: campaigns,
		ledger:    ledger,
		bus:       bus,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}
}

func (p *Pool) Contribute(ctx context.Context, campaignID, contributorID string, amount int64, method model.PaymentMethod) (*model.ContributeResult, error) {
	if amount <= 0 {
		return nil, model.ErrInvalidAmount
	}

	var result model.ContributeResult

	err := p.co.Atomic(ctx, func(ctx context.Context) error {
		campaign, err := p.campaigns.Lock(ctx, campaignID)
		if err != nil {
			return err
		}
		if campaign.Status != model.CampaignPending {
			return model.ErrNotAcceptingContributions
		}
		if contributorID == campaign.OwnerAccountID {
			return model.ErrSelfContribution
		}

		exists, err := p.campaigns.HasContribution(ctx, campaignID, contributorID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrDuplicateContribution
		}

		remaining := campaign.TargetAmount - campaign.CollectedAmount
		if amount > remaining {
			return model.ErrExceedsRemaining
		}

		var newBalance *int64
		if method == model.PaymentInternal {
			balance, err := p.ledger.Debit(ctx, contributorID, amount, model.ReasonBillSupport, map[string]string{
				"campaign_id": campaignID,
			})
			if err != nil {
				return err
			}
			newBalance = &balance
		}

		contribution := model.Contribution{
			ID:            p.newID(),
			CampaignID:    campaignID,
			ContributorID: contributorID,
			Amount:        amount,
			PaymentMethod: method,
			Reference:     p.newID(),
			Status:        model.ContributionCompleted,
			CreatedAt:     p.now(),
		}
		if err := p.campaigns.InsertContribution(ctx, &contribution); err != nil {
			return err
		}

		campaign.CollectedAmount += amount
		campaign.SupporterCount++
		funded := campaign.CollectedAmount >= campaign.TargetAmount
		if funded {
			campaign.Status = model.CampaignApproved
		}
		if err := p.campaigns.Update(ctx, campaign); err != nil {
			return err
		}

		result = model.ContributeResult{
			Contribution:   contribution,
			CampaignStatus: campaign.Status,
			Remaining:      campaign.TargetAmount - campaign.CollectedAmount,
			NewBalance:     newBalance,
		}
		p.co.AfterCommit(ctx, func() {
			publishJSON(p.bus, model.TopicContributed, model.ContributionEvent{
				CampaignID:     campaignID,
				ContributorID:  contributorID,
				Amount:         amount,
				CampaignStatus: result.CampaignStatus,
			})
			if funded {
				publishJSON(p.bus, model.TopicCampaignFunded, model.ContributionEvent{
					CampaignID:     campaignID,
					ContributorID:  contributorID,
					Amount:         amount,
					CampaignStatus: result.CampaignStatus,
				})
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
