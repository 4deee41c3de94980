package handlers

import (
	"net/http"

	"github.com/benx421/lzar-wallet/internal/api"
	"github.com/benx421/lzar-wallet/internal/qr"
)

// ResolveQR handles POST /api/v1/qr/resolve
func (h *Handler) ResolveQR(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	var body api.ResolveQRRequest
	if !decodeBody(w, r, &body) {
		return
	}

	writeJSON(w, http.StatusOK, toDispatch(h.qr.ResolveQR(body.Payload)))
}

func toDispatch(d qr.Dispatch) api.QRDispatch {
	out := api.QRDispatch{Action: string(d.Action), Reason: d.Reason}
	switch {
	case d.Payment != nil:
		out.Params = api.PaymentParams{
			ChargeID:     d.Payment.ChargeID,
			Amount:       api.FormatAmount(d.Payment.Amount),
			Description:  d.Payment.Description,
			MerchantName: d.Payment.MerchantName,
		}
	case d.Recipient != nil:
		out.Params = api.RecipientParams{
			UserID:   d.Recipient.UserID,
			UserName: d.Recipient.UserName,
		}
	}
	return out
}
