package port

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"realdream/internal/core/domain"
)

// LedgerRepository is the persistence layer of the reward ledger. It is an
// outbound port in hexagonal architecture. Implementations must serialize
// transactions so that each InTx call observes and produces a consistent
// state, and must discard every write of fn when it returns an error.
type LedgerRepository interface {
	// InTx runs fn in a read-write transaction. fn may be run more than once
	// when the store aborts a transaction on conflict, so it must not have
	// effects outside tx.
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	// View runs fn in a read-only transaction that takes no row locks.
	// Writes through tx fail.
	View(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the view of the ledger inside a single transaction. Lookups
// return (nil, nil) when the row does not exist.
type LedgerTx interface {
	// CreateCampaign inserts c and assigns the next sequential ID to it.
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns a campaign. Inside InTx the row stays locked for
	// the rest of the tx.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, c *domain.Campaign) error

	InsertTokens(ctx context.Context, tokens []domain.Token) error
	// GetToken returns a token. Inside InTx the row stays locked for the rest
	// of the tx.
	GetToken(ctx context.Context, id domain.TokenID) (*domain.Token, error)
	UpdateToken(ctx context.Context, t *domain.Token) error
	ListTokensByCampaign(ctx context.Context, campaignID int64) ([]domain.Token, error)
	ListTokensByOwner(ctx context.Context, owner common.Address) ([]domain.Token, error)
	// CountReleased counts the settled tokens of a campaign.
	CountReleased(ctx context.Context, campaignID int64) (int64, error)

	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)
	SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error

	InsertPayout(ctx context.Context, p *domain.Payout) error
	ListPayouts(ctx context.Context, campaignID int64) ([]domain.Payout, error)
	// CreditAccount moves value out of the ledger to account.
	CreditAccount(ctx context.Context, account common.Address, amount uint256.Int) error
	Balance(ctx context.Context, account common.Address) (uint256.Int, error)
}

// Settings holds the collection-wide state that is not keyed by campaign.
type Settings struct {
	Royalty domain.Royalty
	Paused  bool
}

// Clock supplies the current time to the ledger. Window checks are always
// evaluated against Clock.Now at the moment an operation executes.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
