package httpadapter

import (
	"net/http"

	"realdream/internal/core/domain"
)

func (h *Handler) handleRoyaltyInfo(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	price, err := parseAmount(r.URL.Query().Get("price"))
	if err != nil {
		badRequest(w, err)
		return
	}
	receiver, amount, err := h.svc.RoyaltyInfo(r.Context(), id, price)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, royaltyInfoResponse{
		TokenID:   id.String(),
		SalePrice: price.Dec(),
		Receiver:  receiver.Hex(),
		Amount:    amount.Dec(),
	})
}

func (h *Handler) handleSetRoyalty(w http.ResponseWriter, r *http.Request) {
	var req royaltyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	receiver, err := parseAddress(req.Receiver)
	if err != nil {
		badRequest(w, err)
		return
	}
	// uint16 would wrap silently; anything above the denominator is FeeTooHigh.
	if req.FeeBasisPoints > domain.FeeDenominator {
		h.writeError(w, r, domain.ErrFeeTooHigh)
		return
	}
	if err := h.svc.SetRoyalty(r.Context(), callerFrom(r.Context()), receiver, uint16(req.FeeBasisPoints)); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeStatus(w, r)
}

func (h *Handler) handleClearRoyalty(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearRoyalty(r.Context(), callerFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeStatus(w, r)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Pause(r.Context(), callerFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeStatus(w, r)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unpause(r.Context(), callerFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeStatus(w, r)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, r)
}

func (h *Handler) writeStatus(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Status(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{
		Name:            s.Name,
		Symbol:          s.Symbol,
		Operator:        s.Operator.Hex(),
		Paused:          s.Paused,
		RoyaltyReceiver: s.Royalty.Receiver.Hex(),
		FeeBasisPoints:  s.Royalty.FeeBasisPoints,
	})
}

// handlePayment models value sent to the ledger outside campaign funding.
// It is always rejected.
func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := h.svc.ReceivePayment(r.Context(), callerFrom(r.Context()), amount); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
