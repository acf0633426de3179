package usecase

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realdream/internal/adapter/memory"
	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// spyTx records the settlement calls of a transaction and then forwards
// them to the wrapped transaction.
type spyTx struct {
	port.LedgerTx
	mock.Mock
}

func (s *spyTx) UpdateToken(ctx context.Context, t *domain.Token) error {
	s.Called(t.ID, t.Released)
	return s.LedgerTx.UpdateToken(ctx, t)
}

func (s *spyTx) InsertPayout(ctx context.Context, p *domain.Payout) error {
	s.Called(p.TokenID)
	return s.LedgerTx.InsertPayout(ctx, p)
}

func (s *spyTx) CreditAccount(ctx context.Context, account common.Address, amount uint256.Int) error {
	s.Called(account, amount)
	return s.LedgerTx.CreditAccount(ctx, account, amount)
}

type spyRepo struct {
	port.LedgerRepository
	spy *spyTx
}

func (r *spyRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	return r.LedgerRepository.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		r.spy.LedgerTx = tx
		return fn(ctx, r.spy)
	})
}

func TestReleaseMarksTokenBeforeMovingValue(t *testing.T) {
	spy := &spyTx{}
	f := newFixtureWithRepo(t, &spyRepo{LedgerRepository: memory.NewLedgerRepository(), spy: spy})
	_, ids := f.fundedCampaign(t, 4_000)
	token := ids[0]
	share := *uint256.NewInt(1_000)

	var reentry error
	mock.InOrder(
		spy.On("UpdateToken", token, true).Return().Once(),
		spy.On("InsertPayout", token).Return().Once(),
		spy.On("CreditAccount", holder1, share).Return().Once().Run(func(mock.Arguments) {
			// a recipient that calls back into release during the value
			// transfer must find the token already settled
			_, reentry = f.uc.payouts.release(f.ctx, spy, token, f.clock.Now())
		}),
	)

	p, err := f.uc.Release(f.ctx, holder1, token)
	require.NoError(t, err)
	assert.Equal(t, share, p.Amount)
	require.ErrorIs(t, reentry, domain.ErrNothingDue)
	spy.AssertExpectations(t)

	acct, err := f.uc.Account(f.ctx, holder1)
	require.NoError(t, err)
	assert.Equal(t, share, acct.Credit)
}

// writeCounter counts read-write transactions.
type writeCounter struct {
	port.LedgerRepository
	writes int
}

func (r *writeCounter) InTx(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	r.writes++
	return r.LedgerRepository.InTx(ctx, fn)
}

func TestQueriesUseReadOnlyTransactions(t *testing.T) {
	repo := &writeCounter{LedgerRepository: memory.NewLedgerRepository()}
	f := newFixtureWithRepo(t, repo)
	id, ids := f.fundedCampaign(t, 4_000)
	token := ids[0]
	repo.writes = 0

	_, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	_, err = f.uc.CampaignTokens(f.ctx, id)
	require.NoError(t, err)
	_, err = f.uc.CampaignPayouts(f.ctx, id)
	require.NoError(t, err)
	_, err = f.uc.Token(f.ctx, token)
	require.NoError(t, err)
	_, err = f.uc.OwnerOf(f.ctx, token)
	require.NoError(t, err)
	_, err = f.uc.PendingAmount(f.ctx, token)
	require.NoError(t, err)
	_, err = f.uc.GetApproved(f.ctx, token)
	require.NoError(t, err)
	_, err = f.uc.IsApprovedForAll(f.ctx, holder1, holder2)
	require.NoError(t, err)
	_, err = f.uc.Account(f.ctx, holder1)
	require.NoError(t, err)
	_, _, err = f.uc.RoyaltyInfo(f.ctx, token, *uint256.NewInt(100))
	require.NoError(t, err)
	_, err = f.uc.Status(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, repo.writes)

	_, err = f.uc.Release(f.ctx, holder1, token)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.writes)

	c, err := f.uc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ReleasedCount)
}
