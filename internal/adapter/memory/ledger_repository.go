package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// LedgerRepository implements port.LedgerRepository in process memory.
// Write transactions are serialized by a mutex and run against a copy of
// the state that replaces the committed state only when fn succeeds. Views
// share the committed state under a read lock.
type LedgerRepository struct {
	mu    sync.RWMutex
	state *state
}

var _ port.LedgerRepository = (*LedgerRepository)(nil)

var errReadOnly = errors.New("write in read-only transaction")

type operatorKey struct {
	owner, operator common.Address
}

type state struct {
	lastCampaignID int64
	campaigns      map[int64]domain.Campaign
	tokens         map[domain.TokenID]domain.Token
	operators      map[operatorKey]bool
	settings       port.Settings
	payouts        []domain.Payout
	balances       map[common.Address]uint256.Int
}

// NewLedgerRepository returns an empty repository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{state: &state{
		campaigns: make(map[int64]domain.Campaign),
		tokens:    make(map[domain.TokenID]domain.Token),
		operators: make(map[operatorKey]bool),
		balances:  make(map[common.Address]uint256.Int),
	}}
}

func (s *state) clone() *state {
	return &state{
		lastCampaignID: s.lastCampaignID,
		campaigns:      maps.Clone(s.campaigns),
		tokens:         maps.Clone(s.tokens),
		operators:      maps.Clone(s.operators),
		settings:       s.settings,
		payouts:        slices.Clone(s.payouts),
		balances:       maps.Clone(s.balances),
	}
}

// InTx runs fn against a private copy of the state and commits it if fn
// returns nil.
func (r *LedgerRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.clone()
	if err := fn(ctx, &ledgerTx{s: work}); err != nil {
		return err
	}
	r.state = work
	return nil
}

// View runs fn against the committed state. Writes fail with errReadOnly.
func (r *LedgerRepository) View(ctx context.Context, fn func(ctx context.Context, tx port.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(ctx, &ledgerTx{s: r.state, readOnly: true})
}

type ledgerTx struct {
	s        *state
	readOnly bool
}

func (t *ledgerTx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *ledgerTx) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.s.lastCampaignID++
	c.ID = t.s.lastCampaignID
	t.s.campaigns[c.ID] = *c
	return nil
}

func (t *ledgerTx) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	c, ok := t.s.campaigns[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *ledgerTx) UpdateCampaign(_ context.Context, c *domain.Campaign) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.s.campaigns[c.ID]; !ok {
		return fmt.Errorf("update campaign %d: not found", c.ID)
	}
	t.s.campaigns[c.ID] = *c
	return nil
}

func (t *ledgerTx) InsertTokens(_ context.Context, tokens []domain.Token) error {
	if err := t.writable(); err != nil {
		return err
	}
	for _, tok := range tokens {
		if _, ok := t.s.tokens[tok.ID]; ok {
			return fmt.Errorf("insert token %s: duplicate id", tok.ID)
		}
		t.s.tokens[tok.ID] = tok
	}
	return nil
}

func (t *ledgerTx) GetToken(_ context.Context, id domain.TokenID) (*domain.Token, error) {
	tok, ok := t.s.tokens[id]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

func (t *ledgerTx) UpdateToken(_ context.Context, tok *domain.Token) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, ok := t.s.tokens[tok.ID]; !ok {
		return fmt.Errorf("update token %s: not found", tok.ID)
	}
	t.s.tokens[tok.ID] = *tok
	return nil
}

func (t *ledgerTx) ListTokensByCampaign(_ context.Context, campaignID int64) ([]domain.Token, error) {
	return t.filterTokens(func(tok domain.Token) bool { return tok.CampaignID == campaignID }), nil
}

func (t *ledgerTx) ListTokensByOwner(_ context.Context, owner common.Address) ([]domain.Token, error) {
	return t.filterTokens(func(tok domain.Token) bool { return tok.Owner == owner }), nil
}

func (t *ledgerTx) CountReleased(_ context.Context, campaignID int64) (int64, error) {
	var n int64
	for _, tok := range t.s.tokens {
		if tok.CampaignID == campaignID && tok.Released {
			n++
		}
	}
	return n, nil
}

func (t *ledgerTx) filterTokens(keep func(domain.Token) bool) []domain.Token {
	out := make([]domain.Token, 0)
	for _, tok := range t.s.tokens {
		if keep(tok) {
			out = append(out, tok)
		}
	}
	slices.SortFunc(out, func(a, b domain.Token) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (t *ledgerTx) IsApprovedForAll(_ context.Context, owner, operator common.Address) (bool, error) {
	return t.s.operators[operatorKey{owner, operator}], nil
}

func (t *ledgerTx) SetApprovalForAll(_ context.Context, owner, operator common.Address, approved bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	key := operatorKey{owner, operator}
	if approved {
		t.s.operators[key] = true
	} else {
		delete(t.s.operators, key)
	}
	return nil
}

func (t *ledgerTx) GetSettings(context.Context) (port.Settings, error) {
	return t.s.settings, nil
}

func (t *ledgerTx) SaveSettings(_ context.Context, s port.Settings) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.s.settings = s
	return nil
}

func (t *ledgerTx) InsertPayout(_ context.Context, p *domain.Payout) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.s.payouts = append(t.s.payouts, *p)
	return nil
}

func (t *ledgerTx) ListPayouts(_ context.Context, campaignID int64) ([]domain.Payout, error) {
	out := make([]domain.Payout, 0)
	for _, p := range t.s.payouts {
		if p.CampaignID == campaignID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *ledgerTx) CreditAccount(_ context.Context, account common.Address, amount uint256.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	bal := t.s.balances[account]
	if _, overflow := bal.AddOverflow(&bal, &amount); overflow {
		return fmt.Errorf("credit %s: balance overflow", account.Hex())
	}
	t.s.balances[account] = bal
	return nil
}

func (t *ledgerTx) Balance(_ context.Context, account common.Address) (uint256.Int, error) {
	return t.s.balances[account], nil
}
