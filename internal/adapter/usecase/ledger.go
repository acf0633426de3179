package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// tokenLedger is the only writer of token ownership and approvals.
type tokenLedger struct {
	registry *campaignRegistry
	guard    *transferGuard
}

func (l *tokenLedger) get(ctx context.Context, tx port.LedgerTx, id domain.TokenID) (*domain.Token, error) {
	t, err := tx.GetToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNonexistentToken
	}
	return t, nil
}

func (l *tokenLedger) mint(ctx context.Context, tx port.LedgerTx, campaignID int64, receivers []common.Address, now time.Time) ([]domain.TokenID, error) {
	if len(receivers) == 0 {
		return nil, domain.ErrEmptyReceiverList
	}
	for _, r := range receivers {
		if r == domain.NullAccount {
			return nil, domain.ErrInvalidAccount
		}
	}
	// One capacity check for the whole batch.
	first, err := l.registry.recordMint(ctx, tx, campaignID, int64(len(receivers)), now)
	if err != nil {
		return nil, err
	}
	tokens := make([]domain.Token, len(receivers))
	ids := make([]domain.TokenID, len(receivers))
	for i, r := range receivers {
		id := domain.NewTokenID(campaignID, first+int64(i))
		ids[i] = id
		tokens[i] = domain.Token{
			ID:         id,
			CampaignID: campaignID,
			Owner:      r,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	if err = tx.InsertTokens(ctx, tokens); err != nil {
		return nil, err
	}
	return ids, nil
}

func (l *tokenLedger) canOperate(ctx context.Context, tx port.LedgerTx, t *domain.Token, caller common.Address) (bool, error) {
	if caller == t.Owner {
		return true, nil
	}
	return tx.IsApprovedForAll(ctx, t.Owner, caller)
}

func (l *tokenLedger) transfer(ctx context.Context, tx port.LedgerTx, caller common.Address, id domain.TokenID, from, to common.Address, now time.Time) error {
	t, err := l.get(ctx, tx, id)
	if err != nil {
		return err
	}
	if err = l.guard.checkTransferable(ctx, tx, id, now); err != nil {
		return err
	}
	if from != t.Owner {
		return domain.ErrUnauthorized
	}
	allowed := t.Approved != domain.NullAccount && caller == t.Approved
	if !allowed {
		if allowed, err = l.canOperate(ctx, tx, t, caller); err != nil {
			return err
		}
	}
	if !allowed {
		return domain.ErrUnauthorized
	}
	if to == domain.NullAccount {
		return domain.ErrInvalidAccount
	}
	t.Owner = to
	t.Approved = domain.NullAccount
	t.UpdatedAt = now
	return tx.UpdateToken(ctx, t)
}

func (l *tokenLedger) approve(ctx context.Context, tx port.LedgerTx, caller common.Address, id domain.TokenID, spender common.Address, now time.Time) error {
	t, err := l.get(ctx, tx, id)
	if err != nil {
		return err
	}
	allowed, err := l.canOperate(ctx, tx, t, caller)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrUnauthorized
	}
	if spender == t.Owner {
		return domain.ErrInvalidAccount
	}
	t.Approved = spender
	t.UpdatedAt = now
	return tx.UpdateToken(ctx, t)
}

// Mint creates one token per receiver, in order, as a single batch.
func (u *RewardUseCase) Mint(ctx context.Context, caller common.Address, campaignID int64, receivers []common.Address) ([]domain.TokenID, error) {
	var ids []domain.TokenID
	err := u.mutate(ctx, "mint", func(ctx context.Context, tx port.LedgerTx) error {
		if err := u.requireOperator(caller); err != nil {
			return err
		}
		var err error
		ids, err = u.ledger.mint(ctx, tx, campaignID, receivers, u.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("tokens minted",
		slog.Int64("campaign_id", campaignID),
		slog.Int("count", len(ids)),
		slog.String("first_token", ids[0].String()),
	)
	return ids, nil
}

// OwnerOf returns the current owner of a token.
func (u *RewardUseCase) OwnerOf(ctx context.Context, id domain.TokenID) (common.Address, error) {
	var owner common.Address
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		t, err := u.ledger.get(ctx, tx, id)
		if err != nil {
			return err
		}
		owner = t.Owner
		return nil
	})
	return owner, err
}

// Token returns the owner, status, metadata URI and pending payout of a token.
func (u *RewardUseCase) Token(ctx context.Context, id domain.TokenID) (*port.TokenView, error) {
	var v port.TokenView
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		t, err := u.ledger.get(ctx, tx, id)
		if err != nil {
			return err
		}
		c, err := u.registry.get(ctx, tx, t.CampaignID)
		if err != nil {
			return err
		}
		now := u.clock.Now()
		v = port.TokenView{
			Token:   *t,
			URI:     domain.URI(c.MetadataBase, t.ID),
			Pending: u.payouts.due(c, t, now),
			Locked:  c.IsActive(now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Transfer moves a token from its owner to another account.
func (u *RewardUseCase) Transfer(ctx context.Context, caller common.Address, id domain.TokenID, from, to common.Address) error {
	err := u.mutate(ctx, "transfer", func(ctx context.Context, tx port.LedgerTx) error {
		return u.ledger.transfer(ctx, tx, caller, id, from, to, u.clock.Now())
	})
	if err != nil {
		return err
	}
	u.logger.Info("token transferred",
		slog.String("token_id", id.String()),
		slog.String("from", from.Hex()),
		slog.String("to", to.Hex()),
	)
	return nil
}

// Approve lets spender transfer one token on behalf of its owner.
func (u *RewardUseCase) Approve(ctx context.Context, caller common.Address, id domain.TokenID, spender common.Address) error {
	return u.mutate(ctx, "approve", func(ctx context.Context, tx port.LedgerTx) error {
		return u.ledger.approve(ctx, tx, caller, id, spender, u.clock.Now())
	})
}

// GetApproved returns the single-token spender, or the null account.
func (u *RewardUseCase) GetApproved(ctx context.Context, id domain.TokenID) (common.Address, error) {
	var spender common.Address
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		t, err := u.ledger.get(ctx, tx, id)
		if err != nil {
			return err
		}
		spender = t.Approved
		return nil
	})
	return spender, err
}

// SetApprovalForAll lets operator transfer every token of caller.
func (u *RewardUseCase) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error {
	return u.mutate(ctx, "set_approval_for_all", func(ctx context.Context, tx port.LedgerTx) error {
		if operator == caller || operator == domain.NullAccount {
			return domain.ErrInvalidAccount
		}
		return tx.SetApprovalForAll(ctx, caller, operator, approved)
	})
}

// IsApprovedForAll reports an operator approval.
func (u *RewardUseCase) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var ok bool
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		ok, err = tx.IsApprovedForAll(ctx, owner, operator)
		return err
	})
	return ok, err
}

// Account summarizes the tokens and credited value of an account.
func (u *RewardUseCase) Account(ctx context.Context, account common.Address) (*port.AccountView, error) {
	v := port.AccountView{Account: account}
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		tokens, err := tx.ListTokensByOwner(ctx, account)
		if err != nil {
			return err
		}
		v.Tokens = make([]domain.TokenID, 0, len(tokens))
		for _, t := range tokens {
			v.Tokens = append(v.Tokens, t.ID)
		}
		v.Credit, err = tx.Balance(ctx, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}
