package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/benx421/lzar-wallet/internal/webhook"
)

// SettlementWebhook handles POST /webhooks/settlement. The raw body is passed on
// untouched because the signature covers its exact bytes.
func (h *Handler) SettlementWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, service.ErrCodeInvalidRequest, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, service.ErrCodeInvalidRequest, "failed to read request body")
		return
	}

	if err := h.webhooks.HandleWebhook(r.Context(), body, r.Header.Get(webhook.SignatureHeader)); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
