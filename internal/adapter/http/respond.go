package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"realdream/internal/core/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code string `json:"code"`
	Kind string `json:"kind"`
}

// statusFor maps a domain error to an HTTP status.
func statusFor(e *domain.Error) int {
	switch e {
	case domain.ErrContractPaused:
		return http.StatusLocked
	case domain.ErrFeeTooHigh:
		return http.StatusUnprocessableEntity
	}
	switch e.Kind {
	case domain.KindLookup:
		return http.StatusNotFound
	case domain.KindAccess:
		if e == domain.ErrNotPaused {
			return http.StatusConflict
		}
		return http.StatusForbidden
	case domain.KindCapacity, domain.KindScheduling, domain.KindSettlement, domain.KindTransfer:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError sends domain errors with their stable code and hides
// everything else behind a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		h.writeJSON(w, statusFor(de), errorBody{Error: errorDetail{Code: de.Code, Kind: string(de.Kind)}})
		return
	}
	h.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}
