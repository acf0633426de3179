package domain

import (
	"time"

	"github.com/holiman/uint256"
)

// Campaign is a capped series of reward tokens that is funded once and paid
// out pro-rata during its distribution window.
// Amounts are stored in the smallest value unit (wei).
type Campaign struct {
	ID                    int64
	Capacity              int64
	CooldownPeriod        time.Duration // minimum notice between funding and distribution start
	MinDistributionPeriod time.Duration // minimum length of the distribution window
	MetadataBase          string
	AssetReference        string
	MintedCount           int64
	FundedAmount          uint256.Int
	FundedAt              time.Time // zero until funded
	DistributionStart     time.Time
	DistributionEnd       time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CampaignParams carries the operator supplied settings of a new campaign.
type CampaignParams struct {
	Capacity              int64
	CooldownPeriod        time.Duration
	MinDistributionPeriod time.Duration
	MetadataBase          string
	AssetReference        string
}

// NewCampaign validates params and returns an unfunded campaign without an
// ID. The repository assigns the ID on insert.
func NewCampaign(p CampaignParams, now time.Time) (*Campaign, error) {
	if p.Capacity <= 0 || p.Capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}
	if p.CooldownPeriod < 0 || p.MinDistributionPeriod < 0 {
		return nil, ErrInvalidWindow
	}
	return &Campaign{
		Capacity:              p.Capacity,
		CooldownPeriod:        p.CooldownPeriod,
		MinDistributionPeriod: p.MinDistributionPeriod,
		MetadataBase:          p.MetadataBase,
		AssetReference:        p.AssetReference,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// Funded reports whether the single funding event has happened.
func (c *Campaign) Funded() bool {
	return !c.FundedAt.IsZero()
}

// FullyMinted reports whether every slot of the campaign has a holder.
func (c *Campaign) FullyMinted() bool {
	return c.MintedCount == c.Capacity
}

// Remaining is the number of tokens that can still be minted.
func (c *Campaign) Remaining() int64 {
	return c.Capacity - c.MintedCount
}

// RecordMint reserves count slots. It leaves the campaign untouched on error.
func (c *Campaign) RecordMint(count int64) error {
	if count <= 0 {
		return ErrEmptyReceiverList
	}
	if count > c.Remaining() {
		return ErrCapacityExceeded
	}
	c.MintedCount += count
	return nil
}

// Fund records the payout pool and schedules the distribution window.
// Checks run in a fixed order so the first violated rule is reported.
func (c *Campaign) Fund(now, start, end time.Time, amount uint256.Int) error {
	if !c.FullyMinted() {
		return ErrNotFullyMinted
	}
	if c.Funded() {
		return ErrAlreadyFunded
	}
	if start.Before(now.Add(c.CooldownPeriod)) {
		return ErrInsufficientNotice
	}
	if end.Sub(start) < c.MinDistributionPeriod {
		return ErrWindowTooShort
	}
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	c.FundedAmount = amount
	c.FundedAt = now
	c.DistributionStart = start
	c.DistributionEnd = end
	c.UpdatedAt = now
	return nil
}

// IsActive reports whether now falls in [DistributionStart, DistributionEnd).
// Unfunded campaigns are never active.
func (c *Campaign) IsActive(now time.Time) bool {
	if !c.Funded() {
		return false
	}
	return !now.Before(c.DistributionStart) && now.Before(c.DistributionEnd)
}

// PayoutPerToken is FundedAmount / Capacity, truncated.
func (c *Campaign) PayoutPerToken() uint256.Int {
	var share uint256.Int
	if c.Capacity <= 0 {
		return share
	}
	share.Div(&c.FundedAmount, uint256.NewInt(uint64(c.Capacity)))
	return share
}

// Remainder is the part of the pool that truncation leaves unallocated. It
// stays with the ledger and is never paid to a holder.
func (c *Campaign) Remainder() uint256.Int {
	var rem uint256.Int
	if c.Capacity <= 0 {
		return rem
	}
	rem.Mod(&c.FundedAmount, uint256.NewInt(uint64(c.Capacity)))
	return rem
}
