package handlers

import (
	"net/http"

	"github.com/benx421/lzar-wallet/internal/api"
	"github.com/benx421/lzar-wallet/internal/models"
)

// GetWallet handles GET /api/v1/wallet
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.wallets.GetWallet(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.Wallet{
		UserID:           wallet.UserID,
		Balance:          api.FormatAmount(models.FromCents(wallet.BalanceCents)),
		AvailableBalance: api.FormatAmount(models.FromCents(wallet.AvailableBalanceCents)),
		Currency:         models.Currency,
	})
}

// GetSettlementBalance handles GET /api/v1/wallet/settlement-balance
func (h *Handler) GetSettlementBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	balance, err := h.wallets.SettlementBalance(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.SettlementBalance{
		Balance:  api.FormatAmount(balance),
		Currency: models.Currency,
	})
}
