package handlers

import (
	"net/http"

	"github.com/benx421/lzar-wallet/internal/api"
	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/oapi-codegen/runtime"
)

// CreateTransfer handles POST /api/v1/transfer
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body api.TransferRequest
	if !decodeBody(w, r, &body) {
		return
	}

	txn, err := h.transfers.Transfer(r.Context(), service.TransferRequest{
		SenderID:    userID,
		Amount:      body.Amount,
		Recipient:   body.Recipient,
		Description: body.Description,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransaction(txn))
}

// CreateMint handles POST /api/v1/mint
func (h *Handler) CreateMint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body api.MintRequest
	if !decodeBody(w, r, &body) {
		return
	}

	txn, err := h.mints.Mint(r.Context(), service.MintRequest{
		ActorID:     userID,
		Amount:      body.Amount,
		Recipient:   body.Recipient,
		Description: body.Description,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransaction(txn))
}

// CreateRedeem handles POST /api/v1/redeem
func (h *Handler) CreateRedeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body api.RedeemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	txn, err := h.redemptions.Redeem(r.Context(), service.RedeemRequest{
		UserID: userID,
		Amount: body.Amount,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransaction(txn))
}

// ListTransactions handles GET /api/v1/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var limit int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, service.ErrCodeInvalidRequest, "limit must be an integer")
		return
	}

	txns, err := h.transactions.ListTransactions(r.Context(), userID, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp := api.TransactionList{Transactions: make([]api.Transaction, 0, len(txns))}
	for i := range txns {
		resp.Transactions = append(resp.Transactions, toTransaction(&txns[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTransaction handles GET /api/v1/transactions/{transactionId}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	txnID, err := pathID(r, "transactionId")
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrCodeTransactionNotFound, "transaction not found")
		return
	}

	txn, err := h.transactions.GetTransaction(r.Context(), userID, txnID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransaction(txn))
}

// GetTransactionReceipt handles GET /api/v1/transactions/{transactionId}/receipt
func (h *Handler) GetTransactionReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	txnID, err := pathID(r, "transactionId")
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrCodeTransactionNotFound, "transaction not found")
		return
	}

	payload, err := h.transactions.TransactionReceipt(r.Context(), userID, txnID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.QRPayload{Payload: payload})
}
