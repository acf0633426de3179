package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// LedgerRepository implements port.LedgerRepository using pgxpool for
// PostgreSQL. Every InTx call is one serializable transaction, retried when
// PostgreSQL aborts it on a conflict; rows read for mutation are locked with
// FOR UPDATE. Views run read-only and take no row locks.
type LedgerRepository struct {
	pool        *pgxpool.Pool
	maxAttempts int
	backoff     time.Duration
}

var _ port.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository returns a new repository instance.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool, maxAttempts: 10, backoff: 5 * time.Millisecond}
}

// SQLSTATE codes after which a transaction can be replayed as is.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// InTx runs fn in a serializable transaction, committing when fn returns
// nil and rolling back otherwise.
func (r *LedgerRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	return r.retry(ctx, func() error {
		return r.runTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, true, fn)
	})
}

// View runs fn in a read-only repeatable read transaction. Reads see one
// snapshot and never wait on writers.
func (r *LedgerRepository) View(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	return r.retry(ctx, func() error {
		return r.runTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, false, fn)
	})
}

func (r *LedgerRepository) retry(ctx context.Context, run func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = run()
		if !retryable(err) {
			return err
		}
		if attempt >= r.maxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}
}

// delay grows linearly with attempt and adds jitter so conflicting
// transactions do not replay in lockstep.
func (r *LedgerRepository) delay(attempt int) time.Duration {
	d := time.Duration(attempt) * r.backoff
	if d <= 0 {
		return 0
	}
	return d + rand.N(d)
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

func (r *LedgerRepository) runTx(ctx context.Context, opts pgx.TxOptions, lock bool, fn func(ctx context.Context, tx port.LedgerTx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else if err = tx.Commit(ctx); err != nil {
			err = fmt.Errorf("commit tx: %w", err)
		}
	}()
	return fn(ctx, &ledgerTx{tx: tx, lock: lock})
}

type ledgerTx struct {
	tx   pgx.Tx
	lock bool
}

// forUpdate is the row lock clause of a write transaction. Read-only
// transactions may not lock rows.
func (t *ledgerTx) forUpdate() string {
	if t.lock {
		return " FOR UPDATE"
	}
	return ""
}

type scanner interface {
	Scan(dest ...any) error
}

const campaignColumns = `id, capacity, cooldown_ms, min_distribution_ms, metadata_base, asset_reference,
    minted_count, funded_amount::text, funded_at, distribution_start, distribution_end, created_at, updated_at`

func scanCampaign(row scanner) (*domain.Campaign, error) {
	var (
		c                  domain.Campaign
		cooldownMs, minMs  int64
		amount             string
		fundedAt           *time.Time
		distStart, distEnd *time.Time
	)
	err := row.Scan(
		&c.ID,
		&c.Capacity,
		&cooldownMs,
		&minMs,
		&c.MetadataBase,
		&c.AssetReference,
		&c.MintedCount,
		&amount,
		&fundedAt,
		&distStart,
		&distEnd,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CooldownPeriod = time.Duration(cooldownMs) * time.Millisecond
	c.MinDistributionPeriod = time.Duration(minMs) * time.Millisecond
	if c.FundedAmount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	if fundedAt != nil {
		c.FundedAt = *fundedAt
	}
	if distStart != nil {
		c.DistributionStart = *distStart
	}
	if distEnd != nil {
		c.DistributionEnd = *distEnd
	}
	return &c, nil
}

// CreateCampaign takes the next id from the settings row so ids stay gap
// free even when a transaction rolls back.
func (t *ledgerTx) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	err := t.tx.QueryRow(ctx, `UPDATE ledger_settings SET last_campaign_id = last_campaign_id + 1 WHERE id = 1 RETURNING last_campaign_id`).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("next campaign id: %w", err)
	}
	_, err = t.tx.Exec(ctx, `INSERT INTO campaigns
    (id, capacity, cooldown_ms, min_distribution_ms, metadata_base, asset_reference, minted_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.Capacity, c.CooldownPeriod.Milliseconds(), c.MinDistributionPeriod.Milliseconds(),
		c.MetadataBase, c.AssetReference, c.MintedCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// GetCampaign returns a campaign by id and locks its row in write
// transactions.
func (t *ledgerTx) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	c, err := scanCampaign(t.tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`+t.forUpdate(), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

func (t *ledgerTx) UpdateCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := t.tx.Exec(ctx, `UPDATE campaigns SET
    metadata_base = $2,
    asset_reference = $3,
    minted_count = $4,
    funded_amount = $5::numeric,
    funded_at = $6,
    distribution_start = $7,
    distribution_end = $8,
    updated_at = $9
WHERE id = $1`,
		c.ID, c.MetadataBase, c.AssetReference, c.MintedCount, c.FundedAmount.Dec(),
		nullTime(c.FundedAt), nullTime(c.DistributionStart), nullTime(c.DistributionEnd), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update campaign %d: %w", c.ID, err)
	}
	return nil
}

func (t *ledgerTx) InsertTokens(ctx context.Context, tokens []domain.Token) error {
	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"tokens"},
		[]string{"id", "campaign_id", "owner", "approved", "released", "created_at", "updated_at"},
		pgx.CopyFromSlice(len(tokens), func(i int) ([]any, error) {
			tok := tokens[i]
			return []any{int64(tok.ID), tok.CampaignID, tok.Owner.Bytes(), nullAddress(tok.Approved), tok.Released, tok.CreatedAt, tok.UpdatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert tokens: %w", err)
	}
	return nil
}

const tokenColumns = `id, campaign_id, owner, approved, released, created_at, updated_at`

func scanToken(row scanner) (domain.Token, error) {
	var (
		tok             domain.Token
		id              int64
		owner, approved []byte
	)
	if err := row.Scan(&id, &tok.CampaignID, &owner, &approved, &tok.Released, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		return tok, err
	}
	tok.ID = domain.TokenID(id)
	tok.Owner = common.BytesToAddress(owner)
	if approved != nil {
		tok.Approved = common.BytesToAddress(approved)
	}
	return tok, nil
}

// GetToken returns a token by id and locks its row in write transactions.
func (t *ledgerTx) GetToken(ctx context.Context, id domain.TokenID) (*domain.Token, error) {
	tok, err := scanToken(t.tx.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE id = $1`+t.forUpdate(), int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token %s: %w", id, err)
	}
	return &tok, nil
}

func (t *ledgerTx) UpdateToken(ctx context.Context, tok *domain.Token) error {
	_, err := t.tx.Exec(ctx, `UPDATE tokens SET owner = $2, approved = $3, released = $4, updated_at = $5 WHERE id = $1`,
		int64(tok.ID), tok.Owner.Bytes(), nullAddress(tok.Approved), tok.Released, tok.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update token %s: %w", tok.ID, err)
	}
	return nil
}

func (t *ledgerTx) ListTokensByCampaign(ctx context.Context, campaignID int64) ([]domain.Token, error) {
	return t.listTokens(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE campaign_id = $1 ORDER BY id`, campaignID)
}

func (t *ledgerTx) ListTokensByOwner(ctx context.Context, owner common.Address) ([]domain.Token, error) {
	return t.listTokens(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE owner = $1 ORDER BY id`, owner.Bytes())
}

func (t *ledgerTx) CountReleased(ctx context.Context, campaignID int64) (int64, error) {
	var n int64
	err := t.tx.QueryRow(ctx, `SELECT count(*) FROM tokens WHERE campaign_id = $1 AND released`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count released tokens: %w", err)
	}
	return n, nil
}

func (t *ledgerTx) listTokens(ctx context.Context, query string, args ...any) ([]domain.Token, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	tokens, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Token, error) {
		return scanToken(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, nil
}

func (t *ledgerTx) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM operator_approvals WHERE owner = $1 AND operator = $2)`,
		owner.Bytes(), operator.Bytes()).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("operator approval: %w", err)
	}
	return ok, nil
}

func (t *ledgerTx) SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error {
	query := `DELETE FROM operator_approvals WHERE owner = $1 AND operator = $2`
	if approved {
		query = `INSERT INTO operator_approvals (owner, operator) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	}
	if _, err := t.tx.Exec(ctx, query, owner.Bytes(), operator.Bytes()); err != nil {
		return fmt.Errorf("set operator approval: %w", err)
	}
	return nil
}

// GetSettings reads the settings row, locking it in write transactions so
// a concurrent pause and a guarded mutation conflict instead of interleaving.
func (t *ledgerTx) GetSettings(ctx context.Context) (port.Settings, error) {
	var (
		s        port.Settings
		receiver []byte
		fee      int32
	)
	err := t.tx.QueryRow(ctx, `SELECT royalty_receiver, royalty_fee_bps, paused FROM ledger_settings WHERE id = 1`+t.forUpdate()).
		Scan(&receiver, &fee, &s.Paused)
	if err != nil {
		return s, fmt.Errorf("get settings: %w", err)
	}
	if receiver != nil {
		s.Royalty.Receiver = common.BytesToAddress(receiver)
	}
	s.Royalty.FeeBasisPoints = uint16(fee)
	return s, nil
}

func (t *ledgerTx) SaveSettings(ctx context.Context, s port.Settings) error {
	_, err := t.tx.Exec(ctx, `UPDATE ledger_settings SET royalty_receiver = $1, royalty_fee_bps = $2, paused = $3 WHERE id = 1`,
		nullAddress(s.Royalty.Receiver), int32(s.Royalty.FeeBasisPoints), s.Paused)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertPayout(ctx context.Context, p *domain.Payout) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO payouts (id, token_id, campaign_id, recipient, amount, released_at)
VALUES ($1::uuid, $2, $3, $4, $5::numeric, $6)`,
		p.ID.String(), int64(p.TokenID), p.CampaignID, p.Recipient.Bytes(), p.Amount.Dec(), p.ReleasedAt)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

func (t *ledgerTx) ListPayouts(ctx context.Context, campaignID int64) ([]domain.Payout, error) {
	rows, err := t.tx.Query(ctx, `SELECT id::text, token_id, campaign_id, recipient, amount::text, released_at
FROM payouts WHERE campaign_id = $1 ORDER BY released_at, token_id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	payouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Payout, error) {
		var (
			p          domain.Payout
			id, amount string
			tokenID    int64
			recipient  []byte
		)
		if err := row.Scan(&id, &tokenID, &p.CampaignID, &recipient, &amount, &p.ReleasedAt); err != nil {
			return p, err
		}
		var err error
		if p.ID, err = uuid.Parse(id); err != nil {
			return p, err
		}
		if p.Amount, err = parseAmount(amount); err != nil {
			return p, err
		}
		p.TokenID = domain.TokenID(tokenID)
		p.Recipient = common.BytesToAddress(recipient)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	return payouts, nil
}

// CreditAccount adds amount to the credited balance of account.
func (t *ledgerTx) CreditAccount(ctx context.Context, account common.Address, amount uint256.Int) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO balances (account, amount) VALUES ($1, $2::numeric)
ON CONFLICT (account) DO UPDATE SET amount = balances.amount + EXCLUDED.amount`,
		account.Bytes(), amount.Dec())
	if err != nil {
		return fmt.Errorf("credit %s: %w", account.Hex(), err)
	}
	return nil
}

func (t *ledgerTx) Balance(ctx context.Context, account common.Address) (uint256.Int, error) {
	var amount string
	err := t.tx.QueryRow(ctx, `SELECT amount::text FROM balances WHERE account = $1`, account.Bytes()).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return uint256.Int{}, nil
	}
	if err != nil {
		return uint256.Int{}, fmt.Errorf("balance %s: %w", account.Hex(), err)
	}
	return parseAmount(amount)
}

func parseAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return *v, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullAddress(a common.Address) []byte {
	if a == domain.NullAccount {
		return nil
	}
	return a.Bytes()
}
