package domain

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TokenIDScale separates the campaign part of a token id from its local
// index: id = campaignID*TokenIDScale + localIndex.
const TokenIDScale = 100_000_000

// MaxCapacity keeps every local index below TokenIDScale so ids never collide
// across campaigns. Local indexes start at 1.
const MaxCapacity = TokenIDScale - 1

// NullAccount is the zero address, used for "no receiver".
var NullAccount = common.Address{}

// TokenID identifies a token across all campaigns.
type TokenID uint64

// NewTokenID encodes a campaign id and a 1-based local index.
func NewTokenID(campaignID, localIndex int64) TokenID {
	return TokenID(uint64(campaignID)*TokenIDScale + uint64(localIndex))
}

// CampaignID decodes the owning campaign.
func (id TokenID) CampaignID() int64 {
	return int64(uint64(id) / TokenIDScale)
}

// LocalIndex decodes the position of the token within its campaign.
func (id TokenID) LocalIndex() int64 {
	return int64(uint64(id) % TokenIDScale)
}

func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseTokenID parses the decimal form produced by String.
func ParseTokenID(s string) (TokenID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenID(v), nil
}

// Token is a minted reward certificate. Tokens are never burned.
type Token struct {
	ID         TokenID
	CampaignID int64
	Owner      common.Address
	Approved   common.Address // single-token spender, cleared on transfer
	Released   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// URI formats the metadata location of a token: base + localIndex + ".json".
func URI(metadataBase string, id TokenID) string {
	return metadataBase + strconv.FormatInt(id.LocalIndex(), 10) + ".json"
}
