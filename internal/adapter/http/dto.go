package httpadapter

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"realdream/internal/core/domain"
	"realdream/internal/core/port"
)

// Values travel as decimal strings so clients never lose precision on
// 256-bit amounts. Durations travel in whole seconds.

type createCampaignRequest struct {
	Capacity               int64  `json:"capacity"`
	CooldownSeconds        int64  `json:"cooldown_seconds"`
	MinDistributionSeconds int64  `json:"min_distribution_seconds"`
	MetadataBase           string `json:"metadata_base"`
	AssetReference         string `json:"asset_reference"`
}

// maxDurationSeconds is the largest second count a time.Duration holds.
const maxDurationSeconds = int64(math.MaxInt64 / time.Second)

func (req createCampaignRequest) params() (domain.CampaignParams, error) {
	cooldown, err := seconds(req.CooldownSeconds)
	if err != nil {
		return domain.CampaignParams{}, err
	}
	minDistribution, err := seconds(req.MinDistributionSeconds)
	if err != nil {
		return domain.CampaignParams{}, err
	}
	return domain.CampaignParams{
		Capacity:              req.Capacity,
		CooldownPeriod:        cooldown,
		MinDistributionPeriod: minDistribution,
		MetadataBase:          req.MetadataBase,
		AssetReference:        req.AssetReference,
	}, nil
}

func seconds(n int64) (time.Duration, error) {
	if n < 0 || n > maxDurationSeconds {
		return 0, errBadDuration
	}
	return time.Duration(n) * time.Second, nil
}

type createCampaignResponse struct {
	ID int64 `json:"id"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type mintRequest struct {
	Receivers []string `json:"receivers"`
}

type mintResponse struct {
	TokenIDs []string `json:"token_ids"`
}

type fundRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Amount string    `json:"amount"`
}

type campaignResponse struct {
	ID                     int64      `json:"id"`
	Capacity               int64      `json:"capacity"`
	CooldownSeconds        int64      `json:"cooldown_seconds"`
	MinDistributionSeconds int64      `json:"min_distribution_seconds"`
	MetadataBase           string     `json:"metadata_base"`
	AssetReference         string     `json:"asset_reference"`
	MintedCount            int64      `json:"minted_count"`
	ReleasedCount          int64      `json:"released_count"`
	Funded                 bool       `json:"funded"`
	FundedAmount           string     `json:"funded_amount"`
	FundedAt               *time.Time `json:"funded_at,omitempty"`
	DistributionStart      *time.Time `json:"distribution_start,omitempty"`
	DistributionEnd        *time.Time `json:"distribution_end,omitempty"`
	Active                 bool       `json:"active"`
	PayoutPerToken         string     `json:"payout_per_token"`
	Remainder              string     `json:"remainder"`
}

func newCampaignResponse(v *port.CampaignView) campaignResponse {
	return campaignResponse{
		ID:                     v.ID,
		Capacity:               v.Capacity,
		CooldownSeconds:        int64(v.CooldownPeriod / time.Second),
		MinDistributionSeconds: int64(v.MinDistributionPeriod / time.Second),
		MetadataBase:           v.MetadataBase,
		AssetReference:         v.AssetReference,
		MintedCount:            v.MintedCount,
		ReleasedCount:          v.ReleasedCount,
		Funded:                 v.Funded(),
		FundedAmount:           v.FundedAmount.Dec(),
		FundedAt:               optionalTime(v.FundedAt),
		DistributionStart:      optionalTime(v.DistributionStart),
		DistributionEnd:        optionalTime(v.DistributionEnd),
		Active:                 v.Active,
		PayoutPerToken:         v.PayoutPerToken.Dec(),
		Remainder:              v.Remainder.Dec(),
	}
}

type tokenResponse struct {
	ID         string `json:"id"`
	CampaignID int64  `json:"campaign_id"`
	LocalIndex int64  `json:"local_index"`
	Owner      string `json:"owner"`
	Approved   string `json:"approved,omitempty"`
	Released   bool   `json:"released"`
	URI        string `json:"uri,omitempty"`
	Pending    string `json:"pending,omitempty"`
	Locked     bool   `json:"locked"`
}

func newTokenResponse(t domain.Token) tokenResponse {
	resp := tokenResponse{
		ID:         t.ID.String(),
		CampaignID: t.CampaignID,
		LocalIndex: t.ID.LocalIndex(),
		Owner:      t.Owner.Hex(),
		Released:   t.Released,
	}
	if t.Approved != domain.NullAccount {
		resp.Approved = t.Approved.Hex()
	}
	return resp
}

func newTokenViewResponse(v *port.TokenView) tokenResponse {
	resp := newTokenResponse(v.Token)
	resp.URI = v.URI
	resp.Pending = v.Pending.Dec()
	resp.Locked = v.Locked
	return resp
}

type payoutResponse struct {
	ID         string    `json:"id"`
	TokenID    string    `json:"token_id"`
	CampaignID int64     `json:"campaign_id"`
	Recipient  string    `json:"recipient"`
	Amount     string    `json:"amount"`
	ReleasedAt time.Time `json:"released_at"`
}

func newPayoutResponse(p domain.Payout) payoutResponse {
	return payoutResponse{
		ID:         p.ID.String(),
		TokenID:    p.TokenID.String(),
		CampaignID: p.CampaignID,
		Recipient:  p.Recipient.Hex(),
		Amount:     p.Amount.Dec(),
		ReleasedAt: p.ReleasedAt,
	}
}

type amountResponse struct {
	TokenID string `json:"token_id"`
	Amount  string `json:"amount"`
}

type transferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type approveRequest struct {
	Spender string `json:"spender"`
}

type approvedResponse struct {
	TokenID  string `json:"token_id"`
	Approved string `json:"approved"`
}

type operatorRequest struct {
	Approved bool `json:"approved"`
}

type operatorResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type royaltyRequest struct {
	Receiver       string `json:"receiver"`
	FeeBasisPoints uint32 `json:"fee_basis_points"`
}

type royaltyInfoResponse struct {
	TokenID   string `json:"token_id"`
	SalePrice string `json:"sale_price"`
	Receiver  string `json:"receiver"`
	Amount    string `json:"amount"`
}

type accountResponse struct {
	Account  string   `json:"account"`
	Balance  int      `json:"balance"`
	TokenIDs []string `json:"token_ids"`
	Credit   string   `json:"credit"`
}

type paymentRequest struct {
	Amount string `json:"amount"`
}

type statusResponse struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Operator        string `json:"operator"`
	Paused          bool   `json:"paused"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	FeeBasisPoints  uint16 `json:"fee_basis_points"`
}

var (
	errBadAddress  = errors.New("invalid account address")
	errBadAmount   = errors.New("invalid decimal amount")
	errBadDuration = errors.New("duration out of range")
	errBadID       = errors.New("invalid id")
)

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errBadAddress
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return uint256.Int{}, errBadAmount
	}
	return *v, nil
}

func campaignIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func tokenIDParam(r *http.Request) (domain.TokenID, error) {
	id, err := domain.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, errBadID
	}
	return id, nil
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
