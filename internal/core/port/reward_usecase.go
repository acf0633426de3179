package port

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"realdream/internal/core/domain"
)

// RewardUseCase defines the business operations exposed by the reward
// ledger. This interface represents the primary port into the application
// domain. The caller argument is the authenticated account issuing the call;
// operator-only operations reject every other caller with
// domain.ErrUnauthorized. Mutating operations fail with
// domain.ErrContractPaused while the ledger is paused.
type RewardUseCase interface {
	// CreateCampaign appends a campaign and returns its sequential ID.
	CreateCampaign(ctx context.Context, caller common.Address, p domain.CampaignParams) (int64, error)
	// SetMetadataBase replaces the metadata base of a campaign.
	SetMetadataBase(ctx context.Context, caller common.Address, campaignID int64, base string) error
	// SetAssetReference replaces the asset reference of a campaign.
	SetAssetReference(ctx context.Context, caller common.Address, campaignID int64, ref string) error
	// Mint creates one token per receiver, in order, as a single batch that
	// either fits the remaining capacity entirely or fails.
	Mint(ctx context.Context, caller common.Address, campaignID int64, receivers []common.Address) ([]domain.TokenID, error)
	// Fund records the payout pool of a fully minted campaign and schedules
	// its distribution window.
	Fund(ctx context.Context, caller common.Address, req FundReq) error
	// Campaign returns the state of a campaign.
	Campaign(ctx context.Context, campaignID int64) (*CampaignView, error)
	// CampaignTokens lists the tokens of a campaign by local index.
	CampaignTokens(ctx context.Context, campaignID int64) ([]domain.Token, error)
	// CampaignPayouts lists the settlement receipts of a campaign.
	CampaignPayouts(ctx context.Context, campaignID int64) ([]domain.Payout, error)

	// Token returns the owner, status, metadata URI and pending payout of a token.
	Token(ctx context.Context, id domain.TokenID) (*TokenView, error)
	// OwnerOf returns the current owner of a token.
	OwnerOf(ctx context.Context, id domain.TokenID) (common.Address, error)
	// Transfer moves a token from its owner to another account. It is
	// rejected with domain.ErrTransferSuspended while the campaign of the
	// token is inside its distribution window.
	Transfer(ctx context.Context, caller common.Address, id domain.TokenID, from, to common.Address) error
	// Approve lets spender transfer one token on behalf of its owner.
	Approve(ctx context.Context, caller common.Address, id domain.TokenID, spender common.Address) error
	// GetApproved returns the single-token spender, or the null account.
	GetApproved(ctx context.Context, id domain.TokenID) (common.Address, error)
	// SetApprovalForAll lets operator transfer every token of caller.
	SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error
	// IsApprovedForAll reports an operator approval.
	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)
	// Account summarizes the tokens and credited value of an account.
	Account(ctx context.Context, account common.Address) (*AccountView, error)

	// PendingAmount returns what Release would pay for the token now.
	PendingAmount(ctx context.Context, id domain.TokenID) (uint256.Int, error)
	// Release pays the token's share of its campaign pool to the current
	// owner, once per token, during the distribution window.
	Release(ctx context.Context, caller common.Address, id domain.TokenID) (*domain.Payout, error)
	// ReceivePayment handles value sent outside Fund. It always fails with
	// domain.ErrDirectPaymentRejected.
	ReceivePayment(ctx context.Context, from common.Address, amount uint256.Int) error

	// SetRoyalty configures the collection-wide royalty.
	SetRoyalty(ctx context.Context, caller, receiver common.Address, feeBasisPoints uint16) error
	// ClearRoyalty resets the royalty to the null receiver and zero fee.
	ClearRoyalty(ctx context.Context, caller common.Address) error
	// RoyaltyInfo returns the royalty owed on a sale of an existing token.
	RoyaltyInfo(ctx context.Context, id domain.TokenID, salePrice uint256.Int) (common.Address, uint256.Int, error)

	// Pause stops every mutating operation except Unpause.
	Pause(ctx context.Context, caller common.Address) error
	// Unpause resumes mutating operations.
	Unpause(ctx context.Context, caller common.Address) error
	// Status returns the collection identity and pause state.
	Status(ctx context.Context) (*StatusView, error)
}

// FundReq schedules the distribution window of a campaign and funds it
// with Amount.
type FundReq struct {
	CampaignID int64
	Start      time.Time
	End        time.Time
	Amount     uint256.Int
}

// CampaignView is a campaign plus the values derived from it at query time.
type CampaignView struct {
	domain.Campaign
	Active         bool
	ReleasedCount  int64
	PayoutPerToken uint256.Int
	Remainder      uint256.Int
}

// TokenView describes a token at query time.
type TokenView struct {
	domain.Token
	URI     string
	Pending uint256.Int
	Locked  bool // transfers suspended by an active window
}

// AccountView lists the holdings of an account.
type AccountView struct {
	Account common.Address
	Tokens  []domain.TokenID
	Credit  uint256.Int
}

// StatusView exposes the collection identity and the pause guard.
type StatusView struct {
	Name     string
	Symbol   string
	Operator common.Address
	Paused   bool
	Royalty  domain.Royalty
}
