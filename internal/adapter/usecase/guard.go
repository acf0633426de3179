package usecase

import (
	"context"
	"time"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// transferGuard suspends ownership changes while a campaign pays out.
// Minting never consults it: a campaign cannot be active before it is full.
type transferGuard struct {
	registry *campaignRegistry
}

func (g *transferGuard) checkTransferable(ctx context.Context, tx port.LedgerTx, id domain.TokenID, now time.Time) error {
	active, err := g.registry.isActive(ctx, tx, id.CampaignID(), now)
	if err != nil {
		return err
	}
	if active {
		return domain.ErrTransferSuspended
	}
	return nil
}
