package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// campaignRegistry is the only writer of campaign records.
type campaignRegistry struct{}

func (r *campaignRegistry) get(ctx context.Context, tx port.LedgerTx, id int64) (*domain.Campaign, error) {
	c, err := tx.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrUnknownCampaign
	}
	return c, nil
}

func (r *campaignRegistry) create(ctx context.Context, tx port.LedgerTx, p domain.CampaignParams, now time.Time) (*domain.Campaign, error) {
	c, err := domain.NewCampaign(p, now)
	if err != nil {
		return nil, err
	}
	if err = tx.CreateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// recordMint reserves count slots and returns the first local index of the
// reserved range.
func (r *campaignRegistry) recordMint(ctx context.Context, tx port.LedgerTx, id, count int64, now time.Time) (int64, error) {
	c, err := r.get(ctx, tx, id)
	if err != nil {
		return 0, err
	}
	first := c.MintedCount + 1
	if err = c.RecordMint(count); err != nil {
		return 0, err
	}
	c.UpdatedAt = now
	if err = tx.UpdateCampaign(ctx, c); err != nil {
		return 0, err
	}
	return first, nil
}

func (r *campaignRegistry) fund(ctx context.Context, tx port.LedgerTx, req port.FundReq, now time.Time) (*domain.Campaign, error) {
	c, err := r.get(ctx, tx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if err = c.Fund(now, req.Start, req.End, req.Amount); err != nil {
		return nil, err
	}
	if err = tx.UpdateCampaign(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *campaignRegistry) isActive(ctx context.Context, tx port.LedgerTx, id int64, now time.Time) (bool, error) {
	c, err := r.get(ctx, tx, id)
	if err != nil {
		return false, err
	}
	return c.IsActive(now), nil
}

func (r *campaignRegistry) update(ctx context.Context, tx port.LedgerTx, id int64, now time.Time, fn func(c *domain.Campaign)) error {
	c, err := r.get(ctx, tx, id)
	if err != nil {
		return err
	}
	fn(c)
	c.UpdatedAt = now
	return tx.UpdateCampaign(ctx, c)
}

// CreateCampaign appends a campaign and returns its sequential ID.
func (u *RewardUseCase) CreateCampaign(ctx context.Context, caller common.Address, p domain.CampaignParams) (int64, error) {
	var id int64
	err := u.mutate(ctx, "create_campaign", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		c, err := u.registry.create(ctx, tx, p, u.clock.Now())
		if err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	u.logger.Info("campaign created",
		slog.Int64("campaign_id", id),
		slog.Int64("capacity", p.Capacity),
		slog.Duration("cooldown", p.CooldownPeriod),
		slog.Duration("min_distribution", p.MinDistributionPeriod),
	)
	return id, nil
}

// SetMetadataBase replaces the metadata base of a campaign.
func (u *RewardUseCase) SetMetadataBase(ctx context.Context, caller common.Address, campaignID int64, base string) error {
	return u.mutate(ctx, "set_metadata_base", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		return u.registry.update(ctx, tx, campaignID, u.clock.Now(), func(c *domain.Campaign) {
			c.MetadataBase = base
		})
	})
}

// SetAssetReference replaces the asset reference of a campaign.
func (u *RewardUseCase) SetAssetReference(ctx context.Context, caller common.Address, campaignID int64, ref string) error {
	return u.mutate(ctx, "set_asset_reference", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		return u.registry.update(ctx, tx, campaignID, u.clock.Now(), func(c *domain.Campaign) {
			c.AssetReference = ref
		})
	})
}

// Fund records the payout pool of a fully minted campaign and schedules
// its distribution window.
func (u *RewardUseCase) Fund(ctx context.Context, caller common.Address, req port.FundReq) error {
	var c *domain.Campaign
	err := u.mutate(ctx, "fund", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		var err error
		c, err = u.registry.fund(ctx, tx, req, u.clock.Now())
		return err
	})
	if err != nil {
		return err
	}
	u.metrics.ObserveFunding(c.FundedAmount)
	u.logger.Info("campaign funded",
		slog.Int64("campaign_id", c.ID),
		slog.String("amount", c.FundedAmount.Dec()),
		slog.Time("start", c.DistributionStart),
		slog.Time("end", c.DistributionEnd),
	)
	return nil
}

// Campaign returns the state of a campaign.
func (u *RewardUseCase) Campaign(ctx context.Context, campaignID int64) (*port.CampaignView, error) {
	var v port.CampaignView
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := u.registry.get(ctx, tx, campaignID)
		if err != nil {
			return err
		}
		released, err := tx.CountReleased(ctx, campaignID)
		if err != nil {
			return err
		}
		v = port.CampaignView{
			Campaign:       *c,
			Active:         c.IsActive(u.clock.Now()),
			ReleasedCount:  released,
			PayoutPerToken: c.PayoutPerToken(),
			Remainder:      c.Remainder(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CampaignTokens lists the tokens of a campaign by local index.
func (u *RewardUseCase) CampaignTokens(ctx context.Context, campaignID int64) ([]domain.Token, error) {
	var tokens []domain.Token
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		if _, err := u.registry.get(ctx, tx, campaignID); err != nil {
			return err
		}
		var err error
		tokens, err = tx.ListTokensByCampaign(ctx, campaignID)
		return err
	})
	return tokens, err
}

// CampaignPayouts lists the settlement receipts of a campaign.
func (u *RewardUseCase) CampaignPayouts(ctx context.Context, campaignID int64) ([]domain.Payout, error) {
	var payouts []domain.Payout
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		if _, err := u.registry.get(ctx, tx, campaignID); err != nil {
			return err
		}
		var err error
		payouts, err = tx.ListPayouts(ctx, campaignID)
		return err
	})
	return payouts, err
}
