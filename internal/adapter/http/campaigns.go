package httpadapter

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"realdream/internal/core/port"
)

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		badRequest(w, err)
		return
	}
	id, err := h.svc.CreateCampaign(r.Context(), callerFrom(r.Context()), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, createCampaignResponse{ID: id})
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	v, err := h.svc.Campaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCampaignResponse(v))
}

func (h *Handler) handleSetMetadataBase(w http.ResponseWriter, r *http.Request) {
	h.setCampaignValue(w, r, h.svc.SetMetadataBase)
}

func (h *Handler) handleSetAssetReference(w http.ResponseWriter, r *http.Request) {
	h.setCampaignValue(w, r, h.svc.SetAssetReference)
}

func (h *Handler) setCampaignValue(w http.ResponseWriter, r *http.Request,
	set func(ctx context.Context, caller common.Address, campaignID int64, value string) error,
) {
	id, err := campaignIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req valueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := set(r.Context(), callerFrom(r.Context()), id, req.Value); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req mintRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	receivers := make([]common.Address, 0, len(req.Receivers))
	for _, s := range req.Receivers {
		addr, err := parseAddress(s)
		if err != nil {
			badRequest(w, err)
			return
		}
		receivers = append(receivers, addr)
	}
	ids, err := h.svc.Mint(r.Context(), callerFrom(r.Context()), id, receivers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := mintResponse{TokenIDs: make([]string, len(ids))}
	for i, tid := range ids {
		resp.TokenIDs[i] = tid.String()
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleFund(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req fundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(w, err)
		return
	}
	err = h.svc.Fund(r.Context(), callerFrom(r.Context()), port.FundReq{
		CampaignID: id,
		Start:      req.Start,
		End:        req.End,
		Amount:     amount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Campaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCampaignResponse(v))
}

func (h *Handler) handleCampaignTokens(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	tokens, err := h.svc.CampaignTokens(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]tokenResponse, len(tokens))
	for i, t := range tokens {
		resp[i] = newTokenResponse(t)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCampaignPayouts(w http.ResponseWriter, r *http.Request) {
	id, err := campaignIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	payouts, err := h.svc.CampaignPayouts(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]payoutResponse, len(payouts))
	for i, p := range payouts {
		resp[i] = newPayoutResponse(p)
	}
	h.writeJSON(w, http.StatusOK, resp)
}
