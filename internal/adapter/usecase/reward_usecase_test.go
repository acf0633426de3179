package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realdream/internal/adapter/memory"
	"realdream/internal/core/domain"
	"realdream/internal/core/port"
	"realdream/internal/metrics"
)

var (
	operator = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	holder1  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	holder2  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	outsider = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	ctx   context.Context
	clock *fakeClock
	repo  port.LedgerRepository
	uc    *RewardUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, memory.NewLedgerRepository())
}

func newFixtureWithRepo(t *testing.T, repo port.LedgerRepository) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	uc := NewRewardUseCase(repo, Options{
		Name:     "The Real Dream",
		Symbol:   "TRD",
		Operator: operator,
		Clock:    clock,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  metrics.New(),
	})
	return &fixture{ctx: context.Background(), clock: clock, repo: repo, uc: uc}
}

// demoParams mirrors the original deployment: capacity 4, two minute
// cooldown, four minute minimum window.
var demoParams = domain.CampaignParams{
	Capacity:              4,
	CooldownPeriod:        120 * time.Second,
	MinDistributionPeriod: 240 * time.Second,
	MetadataBase:          "therealdream.com/api/",
	AssetReference:        "youtube.com/video/xyz",
}

func (f *fixture) createCampaign(t *testing.T) int64 {
	t.Helper()
	id, err := f.uc.CreateCampaign(f.ctx, operator, demoParams)
	require.NoError(t, err)
	return id
}

// fundedCampaign creates, fills and funds a campaign with value and moves
// the clock into its window.
func (f *fixture) fundedCampaign(t *testing.T, value uint64) (int64, []domain.TokenID) {
	t.Helper()
	id := f.createCampaign(t)
	ids, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder1, holder2, holder2})
	require.NoError(t, err)
	start := f.clock.Now().Add(demoParams.CooldownPeriod + 10*time.Second)
	require.NoError(t, f.uc.Fund(f.ctx, operator, port.FundReq{
		CampaignID: id,
		Start:      start,
		End:        start.Add(demoParams.MinDistributionPeriod),
		Amount:     *uint256.NewInt(value),
	}))
	f.clock.now = start.Add(time.Second)
	return id, ids
}

func TestCampaignIDsSequential(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, int64(1), f.createCampaign(t))
	assert.Equal(t, int64(2), f.createCampaign(t))

	_, err := f.uc.CreateCampaign(f.ctx, operator, domain.CampaignParams{Capacity: 0})
	require.ErrorIs(t, err, domain.ErrInvalidCapacity)
	assert.Equal(t, int64(3), f.createCampaign(t))
}

func TestOperatorOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.CreateCampaign(f.ctx, outsider, demoParams)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	id := f.createCampaign(t)
	_, err = f.uc.Mint(f.ctx, outsider, id, []common.Address{holder1})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.ErrorIs(t, f.uc.SetMetadataBase(f.ctx, outsider, id, "x/"), domain.ErrUnauthorized)
	require.ErrorIs(t, f.uc.SetRoyalty(f.ctx, outsider, holder1, 10), domain.ErrUnauthorized)
	require.ErrorIs(t, f.uc.Pause(f.ctx, outsider), domain.ErrUnauthorized)
}

// Scenario A: two batches of two fill the campaign, a fifth token fails.
func TestMintUpToCapacity(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)

	first, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder2})
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{domain.NewTokenID(id, 1), domain.NewTokenID(id, 2)}, first)

	second, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder2})
	require.NoError(t, err)
	assert.Equal(t, domain.NewTokenID(id, 4), second[1])

	_, err = f.uc.Mint(f.ctx, operator, id, []common.Address{outsider})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	c, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.MintedCount)
}

func TestMintBatchIsAtomic(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)
	_, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder1, holder1})
	require.NoError(t, err)

	_, err = f.uc.Mint(f.ctx, operator, id, []common.Address{holder2, holder2})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	c, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.MintedCount)
	acct, err := f.uc.Account(f.ctx, holder2)
	require.NoError(t, err)
	assert.Empty(t, acct.Tokens)

	_, err = f.uc.Mint(f.ctx, operator, id, nil)
	require.ErrorIs(t, err, domain.ErrEmptyReceiverList)
	_, err = f.uc.Mint(f.ctx, operator, id, []common.Address{domain.NullAccount})
	require.ErrorIs(t, err, domain.ErrInvalidAccount)
	_, err = f.uc.Mint(f.ctx, operator, 99, []common.Address{holder1})
	require.ErrorIs(t, err, domain.ErrUnknownCampaign)
}

// Scenario B: funding before the campaign is full fails.
func TestFundRequiresFullMint(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)
	_, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder2})
	require.NoError(t, err)

	start := f.clock.Now().Add(time.Hour)
	err = f.uc.Fund(f.ctx, operator, port.FundReq{CampaignID: id, Start: start, End: start.Add(time.Hour), Amount: *uint256.NewInt(100)})
	require.ErrorIs(t, err, domain.ErrNotFullyMinted)
}

// Scenario C: short notice and short windows are rejected without effect.
func TestFundScheduling(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)
	_, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder1, holder2, holder2})
	require.NoError(t, err)
	now := f.clock.Now()

	early := now.Add(demoParams.CooldownPeriod - 10*time.Second)
	err = f.uc.Fund(f.ctx, operator, port.FundReq{CampaignID: id, Start: early, End: early.Add(time.Hour), Amount: *uint256.NewInt(100)})
	require.ErrorIs(t, err, domain.ErrInsufficientNotice)

	start := now.Add(demoParams.CooldownPeriod + 10*time.Second)
	err = f.uc.Fund(f.ctx, operator, port.FundReq{CampaignID: id, Start: start, End: start, Amount: *uint256.NewInt(100)})
	require.ErrorIs(t, err, domain.ErrWindowTooShort)

	c, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.False(t, c.Funded())
	assert.True(t, c.FundedAmount.IsZero())

	req := port.FundReq{CampaignID: id, Start: start, End: start.Add(demoParams.MinDistributionPeriod), Amount: *uint256.NewInt(100)}
	require.NoError(t, f.uc.Fund(f.ctx, operator, req))
	require.ErrorIs(t, f.uc.Fund(f.ctx, operator, req), domain.ErrAlreadyFunded)
}

// Scenario D: one payout per token during the window, transfers frozen
// until the window closes.
func TestReleaseAndTransferLifecycle(t *testing.T) {
	f := newFixture(t)
	const value = 1_000_003
	id, ids := f.fundedCampaign(t, value)
	token := ids[0]

	pending, err := f.uc.PendingAmount(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(value/4), pending.Uint64())

	p, err := f.uc.Release(f.ctx, outsider, token)
	require.NoError(t, err)
	assert.Equal(t, holder1, p.Recipient)
	assert.Equal(t, uint64(value/4), p.Amount.Uint64())

	_, err = f.uc.Release(f.ctx, holder1, token)
	require.ErrorIs(t, err, domain.ErrNothingDue)
	pending, err = f.uc.PendingAmount(f.ctx, token)
	require.NoError(t, err)
	assert.True(t, pending.IsZero())

	acct, err := f.uc.Account(f.ctx, holder1)
	require.NoError(t, err)
	assert.Equal(t, uint64(value/4), acct.Credit.Uint64())

	for _, tid := range ids {
		owner, err := f.uc.OwnerOf(f.ctx, tid)
		require.NoError(t, err)
		err = f.uc.Transfer(f.ctx, owner, tid, owner, outsider)
		require.ErrorIs(t, err, domain.ErrTransferSuspended)
	}
	require.ErrorIs(t, f.uc.Transfer(f.ctx, outsider, ids[3], holder2, outsider), domain.ErrTransferSuspended)

	c, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.Equal(t, int64(1), c.ReleasedCount)
	assert.Equal(t, uint64(value%4), c.Remainder.Uint64())

	f.clock.Advance(demoParams.MinDistributionPeriod)
	_, err = f.uc.Release(f.ctx, holder2, ids[2])
	require.ErrorIs(t, err, domain.ErrWindowNotActive)

	require.NoError(t, f.uc.Transfer(f.ctx, holder1, token, holder1, outsider))
	owner, err := f.uc.OwnerOf(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, outsider, owner)

	payouts, err := f.uc.CampaignPayouts(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, token, payouts[0].TokenID)
}

func TestReleaseBeforeWindow(t *testing.T) {
	f := newFixture(t)
	_, ids := f.fundedCampaign(t, 400)
	f.clock.Advance(-time.Minute)

	_, err := f.uc.Release(f.ctx, holder1, ids[0])
	require.ErrorIs(t, err, domain.ErrWindowNotActive)
	pending, err := f.uc.PendingAmount(f.ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, pending.IsZero())

	_, err = f.uc.Release(f.ctx, holder1, domain.NewTokenID(9, 1))
	require.ErrorIs(t, err, domain.ErrNonexistentToken)
}

// Scenario E: value sent outside Fund never reaches a pool.
func TestDirectPaymentRejected(t *testing.T) {
	f := newFixture(t)
	id, _ := f.fundedCampaign(t, 800)

	err := f.uc.ReceivePayment(f.ctx, outsider, *uint256.NewInt(5_000))
	require.ErrorIs(t, err, domain.ErrDirectPaymentRejected)

	c, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(800), c.FundedAmount.Uint64())
}

func TestTransferAuthorization(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)
	ids, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1, holder2})
	require.NoError(t, err)

	require.ErrorIs(t, f.uc.Transfer(f.ctx, outsider, ids[0], holder1, outsider), domain.ErrUnauthorized)
	require.ErrorIs(t, f.uc.Transfer(f.ctx, holder1, ids[0], holder2, outsider), domain.ErrUnauthorized)
	require.ErrorIs(t, f.uc.Transfer(f.ctx, holder1, ids[0], holder1, domain.NullAccount), domain.ErrInvalidAccount)
	require.ErrorIs(t, f.uc.Transfer(f.ctx, holder1, domain.NewTokenID(id, 3), holder1, outsider), domain.ErrNonexistentToken)

	// single token approval is consumed by the transfer
	require.NoError(t, f.uc.Approve(f.ctx, holder1, ids[0], outsider))
	spender, err := f.uc.GetApproved(f.ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, outsider, spender)
	require.NoError(t, f.uc.Transfer(f.ctx, outsider, ids[0], holder1, holder2))
	spender, err = f.uc.GetApproved(f.ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.NullAccount, spender)

	// operator approval covers every token of the owner
	require.NoError(t, f.uc.SetApprovalForAll(f.ctx, holder2, outsider, true))
	ok, err := f.uc.IsApprovedForAll(f.ctx, holder2, outsider)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, f.uc.Transfer(f.ctx, outsider, ids[1], holder2, holder1))
	require.NoError(t, f.uc.SetApprovalForAll(f.ctx, holder2, outsider, false))
	require.ErrorIs(t, f.uc.Transfer(f.ctx, outsider, ids[0], holder2, holder1), domain.ErrUnauthorized)

	require.ErrorIs(t, f.uc.SetApprovalForAll(f.ctx, holder1, holder1, true), domain.ErrInvalidAccount)
	require.ErrorIs(t, f.uc.Approve(f.ctx, outsider, ids[1], outsider), domain.ErrUnauthorized)
}

func TestPauseGuard(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)
	ids, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1})
	require.NoError(t, err)

	require.ErrorIs(t, f.uc.Unpause(f.ctx, operator), domain.ErrNotPaused)
	require.NoError(t, f.uc.Pause(f.ctx, operator))
	require.ErrorIs(t, f.uc.Pause(f.ctx, operator), domain.ErrContractPaused)

	st, err := f.uc.Status(f.ctx)
	require.NoError(t, err)
	assert.True(t, st.Paused)
	assert.Equal(t, "TRD", st.Symbol)

	_, err = f.uc.CreateCampaign(f.ctx, operator, demoParams)
	require.ErrorIs(t, err, domain.ErrContractPaused)
	_, err = f.uc.Mint(f.ctx, operator, id, []common.Address{holder1})
	require.ErrorIs(t, err, domain.ErrContractPaused)
	require.ErrorIs(t, f.uc.Transfer(f.ctx, holder1, ids[0], holder1, holder2), domain.ErrContractPaused)
	_, err = f.uc.Release(f.ctx, holder1, ids[0])
	require.ErrorIs(t, err, domain.ErrContractPaused)
	require.ErrorIs(t, f.uc.SetRoyalty(f.ctx, operator, holder1, 10), domain.ErrContractPaused)

	// queries keep working
	owner, err := f.uc.OwnerOf(f.ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, holder1, owner)

	require.ErrorIs(t, f.uc.Unpause(f.ctx, outsider), domain.ErrUnauthorized)
	require.NoError(t, f.uc.Unpause(f.ctx, operator))
	require.NoError(t, f.uc.Transfer(f.ctx, holder1, ids[0], holder1, holder2))
}

func TestRoyalty(t *testing.T) {
	f := newFixture(t)
	id := f.createCampaign(t)
	ids, err := f.uc.Mint(f.ctx, operator, id, []common.Address{holder1})
	require.NoError(t, err)
	price := *uint256.NewInt(10_000_000)

	receiver, amount, err := f.uc.RoyaltyInfo(f.ctx, ids[0], price)
	require.NoError(t, err)
	assert.Equal(t, domain.NullAccount, receiver)
	assert.True(t, amount.IsZero())

	_, _, err = f.uc.RoyaltyInfo(f.ctx, domain.NewTokenID(id, 2), price)
	require.ErrorIs(t, err, domain.ErrNonexistentToken)

	require.ErrorIs(t, f.uc.SetRoyalty(f.ctx, operator, outsider, 10_001), domain.ErrFeeTooHigh)
	require.NoError(t, f.uc.SetRoyalty(f.ctx, operator, outsider, 750))
	receiver, amount, err = f.uc.RoyaltyInfo(f.ctx, ids[0], price)
	require.NoError(t, err)
	assert.Equal(t, outsider, receiver)
	assert.Equal(t, uint64(750_000), amount.Uint64())

	require.NoError(t, f.uc.ClearRoyalty(f.ctx, operator))
	receiver, amount, err = f.uc.RoyaltyInfo(f.ctx, ids[0], price)
	require.NoError(t, err)
	assert.Equal(t, domain.NullAccount, receiver)
	assert.True(t, amount.IsZero())
}

func TestTokenView(t *testing.T) {
	f := newFixture(t)
	id, ids := f.fundedCampaign(t, 40)
	require.NoError(t, f.uc.SetMetadataBase(f.ctx, operator, id, "ipfs://dream/"))

	v, err := f.uc.Token(f.ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, "ipfs://dream/3.json", v.URI)
	assert.Equal(t, holder2, v.Owner)
	assert.True(t, v.Locked)
	assert.Equal(t, uint64(10), v.Pending.Uint64())

	_, err = f.uc.Token(f.ctx, domain.NewTokenID(id, 5))
	require.ErrorIs(t, err, domain.ErrNonexistentToken)
}
