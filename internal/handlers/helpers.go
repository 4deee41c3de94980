package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/benx421/lzar-wallet/internal/api"
	"github.com/benx421/lzar-wallet/internal/auth"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/oapi-codegen/runtime"
)

// maxBodyBytes bounds request bodies, webhooks included
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Best effort response writing
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, api.Error{Error: code, Message: message})
}

// statusForKind maps the error taxonomy to HTTP status codes
func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindAuthentication:
		return http.StatusUnauthorized
	case service.KindValidation, service.KindInsufficientBalance:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the response for a service error. Internal details are
// logged, never returned.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := extractServiceError(err)
	if svcErr == nil {
		h.logger.Error("unexpected error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, service.ErrCodeInternalError, "internal error")
		return
	}

	status := statusForKind(svcErr.Kind())
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"path", r.URL.Path,
			"code", svcErr.Code,
			"error", err,
		)
	}
	writeError(w, status, svcErr.Code, svcErr.Message)
}

func extractServiceError(err error) *service.ServiceError {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// decodeBody reads a JSON request body into dst
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, service.ErrCodeInvalidRequest, msg)
		return false
	}
	return true
}

// currentUser returns the user Authenticate stored on the request
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, service.ErrCodeUnauthorized, "authentication required")
	}
	return userID, ok
}

// pathID binds the named uuid path parameter
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, mux.Vars(r)[name], &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func toTransaction(txn *models.Transaction) api.Transaction {
	return api.Transaction{
		TransactionID: txn.ID,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		Amount:        api.FormatAmount(models.FromCents(txn.AmountCents)),
		Currency:      txn.Currency,
		SenderID:      txn.SenderID,
		RecipientID:   txn.RecipientID,
		Description:   txn.Description,
		ExternalID:    txn.ExternalID,
		ErrorMessage:  txn.ErrorMessage,
		CreatedAt:     txn.CreatedAt,
		CompletedAt:   txn.CompletedAt,
	}
}

func toCharge(c *models.Charge) api.Charge {
	return api.Charge{
		ChargeID:    c.ID,
		OwnerID:     c.OwnerID,
		PaymentID:   c.PaymentID,
		Status:      string(c.Status),
		Amount:      api.FormatAmount(models.FromCents(c.AmountCents)),
		Currency:    c.Currency,
		Description: c.Description,
		PayerID:     c.PayerID,
		PaidAt:      c.PaidAt,
		ExpiresAt:   c.ExpiresAt,
		CreatedAt:   c.CreatedAt,
	}
}
