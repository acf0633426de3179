package usecase

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// SetRoyalty configures the collection-wide royalty.
func (u *RewardUseCase) SetRoyalty(ctx context.Context, caller, receiver common.Address, feeBasisPoints uint16) error {
	err := u.mutate(ctx, "set_royalty", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		r, err := domain.NewRoyalty(receiver, feeBasisPoints)
		if err != nil {
			return err
		}
		if receiver == domain.NullAccount {
			return domain.ErrInvalidAccount
		}
		return u.saveRoyalty(ctx, tx, r)
	})
	if err == nil {
		u.logger.Info("royalty set", slog.String("receiver", receiver.Hex()), slog.Int("fee_bps", int(feeBasisPoints)))
	}
	return err
}

// ClearRoyalty resets the royalty to the null receiver and zero fee.
func (u *RewardUseCase) ClearRoyalty(ctx context.Context, caller common.Address) error {
	err := u.mutate(ctx, "clear_royalty", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		return u.saveRoyalty(ctx, tx, domain.Royalty{})
	})
	if err == nil {
		u.logger.Info("royalty cleared")
	}
	return err
}

func (u *RewardUseCase) saveRoyalty(ctx context.Context, tx port.LedgerTx, r domain.Royalty) error {
	s, err := tx.GetSettings(ctx)
	if err != nil {
		return err
	}
	s.Royalty = r
	return tx.SaveSettings(ctx, s)
}

// RoyaltyInfo returns the royalty owed on a sale of an existing token.
func (u *RewardUseCase) RoyaltyInfo(ctx context.Context, id domain.TokenID, salePrice uint256.Int) (common.Address, uint256.Int, error) {
	var (
		receiver common.Address
		amount   uint256.Int
	)
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		if _, err := u.ledger.get(ctx, tx, id); err != nil {
			return err
		}
		s, err := tx.GetSettings(ctx)
		if err != nil {
			return err
		}
		receiver, amount = s.Royalty.Info(salePrice)
		return nil
	})
	return receiver, amount, err
}
