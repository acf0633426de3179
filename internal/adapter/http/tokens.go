package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleGetToken(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	v, err := h.svc.Token(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newTokenViewResponse(v))
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	amount, err := h.svc.PendingAmount(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, amountResponse{TokenID: id.String(), Amount: amount.Dec()})
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	p, err := h.svc.Release(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newPayoutResponse(*p))
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	from, err := parseAddress(req.From)
	if err != nil {
		badRequest(w, err)
		return
	}
	to, err := parseAddress(req.To)
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.Transfer(r.Context(), callerFrom(r.Context()), id, from, to); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Token(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newTokenViewResponse(v))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req approveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	spender, err := parseAddress(req.Spender)
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.Approve(r.Context(), callerFrom(r.Context()), id, spender); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetApproved(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	spender, err := h.svc.GetApproved(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, approvedResponse{TokenID: id.String(), Approved: spender.Hex()})
}

func (h *Handler) handleSetApprovalForAll(w http.ResponseWriter, r *http.Request) {
	operator, err := parseAddress(chi.URLParam(r, "operator"))
	if err != nil {
		badRequest(w, err)
		return
	}
	var req operatorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	caller := callerFrom(r.Context())
	if err := h.svc.SetApprovalForAll(r.Context(), caller, operator, req.Approved); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, operatorResponse{Owner: caller.Hex(), Operator: operator.Hex(), Approved: req.Approved})
}

func (h *Handler) handleIsApprovedForAll(w http.ResponseWriter, r *http.Request) {
	owner, err := parseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		badRequest(w, err)
		return
	}
	operator, err := parseAddress(chi.URLParam(r, "operator"))
	if err != nil {
		badRequest(w, err)
		return
	}
	ok, err := h.svc.IsApprovedForAll(r.Context(), owner, operator)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, operatorResponse{Owner: owner.Hex(), Operator: operator.Hex(), Approved: ok})
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "addr"))
	if err != nil {
		badRequest(w, err)
		return
	}
	v, err := h.svc.Account(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := accountResponse{
		Account:  v.Account.Hex(),
		Balance:  len(v.Tokens),
		TokenIDs: make([]string, len(v.Tokens)),
		Credit:   v.Credit.Dec(),
	}
	for i, id := range v.Tokens {
		resp.TokenIDs[i] = id.String()
	}
	h.writeJSON(w, http.StatusOK, resp)
}
