package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

func TestInTxRollsBackOnError(t *testing.T) {
	repo := NewLedgerRepository()
	ctx := context.Background()
	holder := common.HexToAddress("0x1")
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c := &domain.Campaign{Capacity: 2}
		require.NoError(t, tx.CreateCampaign(ctx, c))
		require.NoError(t, tx.InsertTokens(ctx, []domain.Token{{ID: domain.NewTokenID(c.ID, 1), CampaignID: c.ID, Owner: holder}}))
		require.NoError(t, tx.CreditAccount(ctx, holder, *uint256.NewInt(7)))
		require.NoError(t, tx.SaveSettings(ctx, port.Settings{Paused: true}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		c, err := tx.GetCampaign(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, c)
		tokens, err := tx.ListTokensByOwner(ctx, holder)
		require.NoError(t, err)
		assert.Empty(t, tokens)
		bal, err := tx.Balance(ctx, holder)
		require.NoError(t, err)
		assert.True(t, bal.IsZero())
		s, err := tx.GetSettings(ctx)
		require.NoError(t, err)
		assert.False(t, s.Paused)
		return nil
	}))
}

func TestCampaignIDsAreSequential(t *testing.T) {
	repo := NewLedgerRepository()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
			c := &domain.Campaign{Capacity: 1}
			if err := tx.CreateCampaign(ctx, c); err != nil {
				return err
			}
			ids = append(ids, c.ID)
			return nil
		}))
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestTokensListedInIDOrder(t *testing.T) {
	repo := NewLedgerRepository()
	ctx := context.Background()
	owner := common.HexToAddress("0x2")

	require.NoError(t, repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.InsertTokens(ctx, []domain.Token{
			{ID: domain.NewTokenID(2, 1), CampaignID: 2, Owner: owner},
			{ID: domain.NewTokenID(1, 2), CampaignID: 1, Owner: owner},
			{ID: domain.NewTokenID(1, 1), CampaignID: 1, Owner: owner},
		})
	}))
	require.NoError(t, repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		tokens, err := tx.ListTokensByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, tokens, 3)
		assert.Equal(t, domain.NewTokenID(1, 1), tokens[0].ID)
		assert.Equal(t, domain.NewTokenID(2, 1), tokens[2].ID)

		err = tx.InsertTokens(ctx, []domain.Token{{ID: domain.NewTokenID(1, 1)}})
		assert.Error(t, err)
		return nil
	}))
}

func TestCanceledContext(t *testing.T) {
	repo := NewLedgerRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := repo.InTx(ctx, func(context.Context, port.LedgerTx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestViewIsReadOnly(t *testing.T) {
	repo := NewLedgerRepository()
	ctx := context.Background()
	owner := common.HexToAddress("0x3")

	require.NoError(t, repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		return tx.InsertTokens(ctx, []domain.Token{
			{ID: domain.NewTokenID(1, 1), CampaignID: 1, Owner: owner, Released: true},
			{ID: domain.NewTokenID(1, 2), CampaignID: 1, Owner: owner},
			{ID: domain.NewTokenID(1, 3), CampaignID: 1, Owner: owner, Released: true},
			{ID: domain.NewTokenID(2, 1), CampaignID: 2, Owner: owner, Released: true},
		})
	}))

	require.NoError(t, repo.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		n, err := tx.CountReleased(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		assert.ErrorIs(t, tx.SaveSettings(ctx, port.Settings{Paused: true}), errReadOnly)
		assert.ErrorIs(t, tx.CreditAccount(ctx, owner, *uint256.NewInt(1)), errReadOnly)
		assert.ErrorIs(t, tx.CreateCampaign(ctx, &domain.Campaign{Capacity: 1}), errReadOnly)
		return nil
	}))

	require.NoError(t, repo.View(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		s, err := tx.GetSettings(ctx)
		require.NoError(t, err)
		assert.False(t, s.Paused)
		return nil
	}))
}
