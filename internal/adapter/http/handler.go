package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/pocketbank/internal/domain"
	"github.com/iho/pocketbank/internal/storage"
	"github.com/iho/pocketbank/internal/store"
)

// StateHandler serves the operational surface over the state store.
type StateHandler struct {
	store   *store.Store
	backend *storage.Tiered
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(st *store.Store, backend *storage.Tiered) *StateHandler {
	return &StateHandler{store: st, backend: backend}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Health returns 200 when the process is alive, plus whether durable
// storage is reachable. Degraded storage is not a failure: the store
// keeps working memory-only.
func (h *StateHandler) Health(w http.ResponseWriter, r *http.Request) {
	durable := h.backend.RequestDurable(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"durable": durable,
	})
}

// ExportSnapshot returns the full state envelope.
func (h *StateHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ExportSnapshot())
}

// ImportSnapshot replaces state from an uploaded envelope, migrating
// older versions on the way in.
func (h *StateHandler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var env domain.SnapshotEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid snapshot", err.Error())
		return
	}
	if err := h.store.ImportSnapshot(env); err != nil {
		writeError(w, mapDomainError(err), "import failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// StorageUsage reports used and quota bytes across durable tiers.
func (h *StateHandler) StorageUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.backend.Usage(r.Context()))
}

// ListTransactions returns the ledger, newest first.
func (h *StateHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns := h.store.Transactions()

	limit := parseIntQuery(r, "limit", len(txns))
	if limit < len(txns) {
		txns = txns[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"count":        len(txns),
	})
}

// Reset wipes every storage tier and reseeds default state.
func (h *StateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "reset failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotVersionAhead):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidFee),
		errors.Is(err, domain.ErrInvalidDirection):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBeneficiaryNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrLoanNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
