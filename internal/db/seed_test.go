package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realdream/internal/adapter/memory"
	"realdream/internal/adapter/usecase"
	"realdream/internal/core/domain"
)

func TestSeedFillsDemoCampaign(t *testing.T) {
	operator := common.HexToAddress("0xa0")
	uc := usecase.NewRewardUseCase(memory.NewLedgerRepository(), usecase.Options{
		Operator: operator,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	id, tokens, err := Seed(ctx, uc, operator, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, tokens, int(DemoCampaign.Capacity))

	c, err := uc.Campaign(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.FullyMinted())

	_, _, err = Seed(ctx, uc, operator, []common.Address{operator, operator, operator, operator, operator})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	_, _, err = Seed(ctx, uc, common.HexToAddress("0xbad"), nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
