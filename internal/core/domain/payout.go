package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Payout is the settlement receipt written by a successful release.
type Payout struct {
	ID         uuid.UUID
	TokenID    TokenID
	CampaignID int64
	Recipient  common.Address
	Amount     uint256.Int
	ReleasedAt time.Time
}
