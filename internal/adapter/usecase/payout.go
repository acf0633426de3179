package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// payoutEngine settles the per-token share of a funded campaign. It writes
// only Token.Released and settlement receipts.
type payoutEngine struct {
	registry *campaignRegistry
	ledger   *tokenLedger
}

// due is the pending amount of t: the fixed share while the window is open
// and the token is unreleased, zero otherwise.
func (e *payoutEngine) due(c *domain.Campaign, t *domain.Token, now time.Time) uint256.Int {
	if t.Released || !c.IsActive(now) {
		return uint256.Int{}
	}
	return c.PayoutPerToken()
}

func (e *payoutEngine) pending(ctx context.Context, tx port.LedgerTx, id domain.TokenID, now time.Time) (uint256.Int, error) {
	t, err := e.ledger.get(ctx, tx, id)
	if err != nil {
		return uint256.Int{}, err
	}
	c, err := e.registry.get(ctx, tx, t.CampaignID)
	if err != nil {
		return uint256.Int{}, err
	}
	return e.due(c, t, now), nil
}

// release validates, marks the token released and records the receipt
// before crediting the owner. A re-entrant claim observes Released and gets
// ErrNothingDue.
func (e *payoutEngine) release(ctx context.Context, tx port.LedgerTx, id domain.TokenID, now time.Time) (*domain.Payout, error) {
	t, err := e.ledger.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	c, err := e.registry.get(ctx, tx, t.CampaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive(now) {
		return nil, domain.ErrWindowNotActive
	}
	amount := e.due(c, t, now)
	if amount.IsZero() {
		return nil, domain.ErrNothingDue
	}

	t.Released = true
	t.UpdatedAt = now
	if err = tx.UpdateToken(ctx, t); err != nil {
		return nil, err
	}
	p := &domain.Payout{
		ID:         uuid.New(),
		TokenID:    t.ID,
		CampaignID: t.CampaignID,
		Recipient:  t.Owner,
		Amount:     amount,
		ReleasedAt: now,
	}
	if err = tx.InsertPayout(ctx, p); err != nil {
		return nil, err
	}

	if err = tx.CreditAccount(ctx, t.Owner, amount); err != nil {
		return nil, err
	}
	return p, nil
}

// PendingAmount returns what Release would pay for the token now.
func (u *RewardUseCase) PendingAmount(ctx context.Context, id domain.TokenID) (uint256.Int, error) {
	var amount uint256.Int
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		amount, err = u.payouts.pending(ctx, tx, id, u.clock.Now())
		return err
	})
	return amount, err
}

// Release pays the token's share of its campaign pool to the current owner.
// Any caller may trigger it; the value always goes to the owner.
func (u *RewardUseCase) Release(ctx context.Context, caller common.Address, id domain.TokenID) (*domain.Payout, error) {
	var p *domain.Payout
	err := u.mutate(ctx, "release", func(ctx context.Context, tx port.LedgerTx) error {
		var err error
		p, err = u.payouts.release(ctx, tx, id, u.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	u.metrics.ObservePayout(p.Amount)
	u.logger.Info("payout released",
		slog.String("payout_id", p.ID.String()),
		slog.String("token_id", id.String()),
		slog.String("recipient", p.Recipient.Hex()),
		slog.String("caller", caller.Hex()),
		slog.String("amount", p.Amount.Dec()),
	)
	return p, nil
}

// ReceivePayment rejects value sent outside Fund. Funded amounts are never
// touched.
func (u *RewardUseCase) ReceivePayment(ctx context.Context, from common.Address, amount uint256.Int) error {
	u.metrics.ObserveDirectPayment()
	u.logger.Warn("direct payment rejected",
		slog.String("from", from.Hex()),
		slog.String("amount", amount.Dec()),
	)
	u.observe("receive_payment", domain.ErrDirectPaymentRejected)
	return domain.ErrDirectPaymentRejected
}
