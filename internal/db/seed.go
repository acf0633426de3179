package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// DemoCampaign reproduces the first TRD drop: four tokens, two minutes of
// funding notice and a one day distribution window.
var DemoCampaign = domain.CampaignParams{
	Capacity:              4,
	CooldownPeriod:        2 * time.Minute,
	MinDistributionPeriod: 24 * time.Hour,
	MetadataBase:          "therealdream.com/api/",
	AssetReference:        "youtube.com/video/xyz",
}

// Seed creates the demo campaign and mints it to receivers. When receivers
// is empty the campaign is filled with throwaway addresses.
func Seed(ctx context.Context, uc port.RewardUseCase, operator common.Address, receivers []common.Address) (int64, []domain.TokenID, error) {
	if len(receivers) == 0 {
		receivers = make([]common.Address, DemoCampaign.Capacity)
		for i := range receivers {
			id := uuid.New()
			receivers[i] = common.BytesToAddress(id[:])
		}
	}
	campaignID, err := uc.CreateCampaign(ctx, operator, DemoCampaign)
	if err != nil {
		return 0, nil, fmt.Errorf("create demo campaign: %w", err)
	}
	ids, err := uc.Mint(ctx, operator, campaignID, receivers)
	if err != nil {
		return campaignID, nil, fmt.Errorf("mint demo campaign %d: %w", campaignID, err)
	}
	return campaignID, ids, nil
}
