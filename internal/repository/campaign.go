package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"golbucks/internal/model"
)

// CampaignStore persists bill-support campaigns and contributions.
type CampaignStore struct {
	co *Coordinator
}

func NewCampaignStore(co *Coordinator) *CampaignStore {
	return &CampaignStore{co: co}
}

func (s *CampaignStore) Lock(ctx context.Context, campaignID string) (*model.Campaign, error) {
	campaign := &model.Campaign{ID: campaignID}
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT owner_account_id, target_amount, collected_amount, supporter_count, status
		 FROM campaigns WHERE id = $1 FOR UPDATE`,
		campaignID,
	).Scan(&campaign.OwnerAccountID, &campaign.TargetAmount, &campaign.CollectedAmount,
		&campaign.SupporterCount, &campaign.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrCampaignNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("lock campaign %s: %w", campaignID, err))
	}
	return campaign, nil
}

func (s *CampaignStore) HasContribution(ctx context.Context, campaignID, contributorID string) (bool, error) {
	var exists bool
	err := s.co.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM contributions WHERE campaign_id = $1 AND contributor_id = $2
		 )`,
		campaignID, contributorID,
	).Scan(&exists)
	if err != nil {
		return false, classify(fmt.Errorf("check contribution %s/%s: %w", campaignID, contributorID, err))
	}
	return exists, nil
}

func (s *CampaignStore) InsertContribution(ctx context.Context, c *model.Contribution) error {
	_, err := s.co.db(ctx).Exec(ctx,
		`INSERT INTO contributions (id, campaign_id, contributor_id, amount, payment_method, reference, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.CampaignID, c.ContributorID, c.Amount, c.PaymentMethod, c.Reference, c.Status, c.CreatedAt,
	)
	if err != nil {
		return classify(fmt.Errorf("insert contribution %s: %w", c.ID, err))
	}
	return nil
}

func (s *CampaignStore) Update(ctx context.Context, campaign *model.Campaign) error {
	tag, err := s.co.db(ctx).Exec(ctx,
		`UPDATE campaigns
		 SET collected_amount = $2, supporter_count = $3, status = $4
		 WHERE id = $1`,
		campaign.ID, campaign.CollectedAmount, campaign.SupporterCount, campaign.Status,
	)
	if err != nil {
		return classify(fmt.Errorf("update campaign %s: %w", campaign.ID, err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCampaignNotFound
	}
	return nil
}
