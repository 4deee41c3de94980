package handlers

import (
	"net/http"

	"github.com/benx421/lzar-wallet/internal/api"
	"github.com/benx421/lzar-wallet/internal/service"
)

// CreateCharge handles POST /api/v1/charges
func (h *Handler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body api.ChargeRequest
	if !decodeBody(w, r, &body) {
		return
	}

	charge, err := h.charges.CreateCharge(r.Context(), service.ChargeRequest{
		OwnerID:     userID,
		Amount:      body.Amount,
		PaymentID:   body.PaymentID,
		Description: body.Description,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCharge(charge))
}

// GetCharge handles GET /api/v1/charges/{chargeId}
func (h *Handler) GetCharge(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	chargeID, err := pathID(r, "chargeId")
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrCodeChargeNotFound, "charge not found")
		return
	}

	charge, err := h.charges.GetCharge(r.Context(), chargeID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCharge(charge))
}

// GetChargeQR handles GET /api/v1/charges/{chargeId}/qr
func (h *Handler) GetChargeQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	chargeID, err := pathID(r, "chargeId")
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrCodeChargeNotFound, "charge not found")
		return
	}

	payload, err := h.charges.ChargeQR(r.Context(), userID, chargeID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.QRPayload{Payload: payload})
}
