package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
	"realdream/internal/metrics"
)

// Options configures a RewardUseCase.
type Options struct {
	// Name and Symbol identify the collection.
	Name   string
	Symbol string
	// Operator is the single privileged account.
	Operator common.Address
	Clock    port.Clock
	Logger   *slog.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// RewardUseCase implements port.RewardUseCase. It composes the campaign
// registry, token ledger, transfer guard, payout engine and royalty
// calculator, and runs every operation as one repository transaction.
type RewardUseCase struct {
	repo     port.LedgerRepository
	clock    port.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	name     string
	symbol   string
	operator common.Address

	registry *campaignRegistry
	ledger   *tokenLedger
	guard    *transferGuard
	payouts  *payoutEngine
}

var _ port.RewardUseCase = (*RewardUseCase)(nil)

// NewRewardUseCase wires the ledger components over repo.
func NewRewardUseCase(repo port.LedgerRepository, opts Options) *RewardUseCase {
	if opts.Clock == nil {
		opts.Clock = port.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	registry := &campaignRegistry{}
	guard := &transferGuard{registry: registry}
	ledger := &tokenLedger{registry: registry, guard: guard}
	return &RewardUseCase{
		repo:     repo,
		clock:    opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		name:     opts.Name,
		symbol:   opts.Symbol,
		operator: opts.Operator,
		registry: registry,
		ledger:   ledger,
		guard:    guard,
		payouts:  &payoutEngine{registry: registry, ledger: ledger},
	}
}

// mutate runs fn in a transaction behind the pause guard. Nothing fn wrote
// survives an error.
func (u *RewardUseCase) mutate(ctx context.Context, op string, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	err := u.repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		if err := requireRunning(ctx, tx); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
	u.observe(op, err)
	return err
}

// view runs a read-only fn. Queries are answered while paused.
func (u *RewardUseCase) view(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	return u.repo.View(ctx, fn)
}

func (u *RewardUseCase) requireOperator(caller common.Address) error {
	if caller != u.operator || caller == domain.NullAccount {
		return domain.ErrUnauthorized
	}
	return nil
}

func (u *RewardUseCase) observe(op string, err error) {
	var de *domain.Error
	switch {
	case err == nil:
		u.metrics.ObserveOperation(op, "ok")
	case errors.As(err, &de):
		u.metrics.ObserveOperation(op, de.Code)
		u.logger.Warn("operation rejected", slog.String("op", op), slog.String("code", de.Code))
	default:
		u.metrics.ObserveOperation(op, "internal")
	}
}

// requireRunning is the pause guard consulted by every mutating entry point.
func requireRunning(ctx context.Context, tx port.LedgerTx) error {
	s, err := tx.GetSettings(ctx)
	if err != nil {
		return err
	}
	if s.Paused {
		return domain.ErrContractPaused
	}
	return nil
}

// Pause stops every mutating operation except Unpause.
func (u *RewardUseCase) Pause(ctx context.Context, caller common.Address) error {
	return u.setPaused(ctx, "pause", caller, true)
}

// Unpause resumes mutating operations.
func (u *RewardUseCase) Unpause(ctx context.Context, caller common.Address) error {
	return u.setPaused(ctx, "unpause", caller, false)
}

func (u *RewardUseCase) setPaused(ctx context.Context, op string, caller common.Address, paused bool) error {
	err := u.repo.InTx(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		s, err := tx.GetSettings(ctx)
		if err != nil {
			return err
		}
		if paused && s.Paused {
			return domain.ErrContractPaused
		}
		if err = u.requireOperator(caller); err != nil {
			return err
		}
		if !paused && !s.Paused {
			return domain.ErrNotPaused
		}
		s.Paused = paused
		return tx.SaveSettings(ctx, s)
	})
	u.observe(op, err)
	if err == nil {
		u.logger.Info("pause state changed", slog.Bool("paused", paused))
	}
	return err
}

// Status returns the collection identity and pause state.
func (u *RewardUseCase) Status(ctx context.Context) (*port.StatusView, error) {
	var st port.StatusView
	err := u.view(ctx, func(ctx context.Context, tx port.LedgerTx) error {
		s, err := tx.GetSettings(ctx)
		if err != nil {
			return err
		}
		st = port.StatusView{
			Name:     u.name,
			Symbol:   u.symbol,
			Operator: u.operator,
			Paused:   s.Paused,
			Royalty:  s.Royalty,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}
