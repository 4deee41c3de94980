package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benx421/lzar-wallet/internal/auth"
	"github.com/benx421/lzar-wallet/internal/models"
	rmocks "github.com/benx421/lzar-wallet/internal/repository/mocks"
	"github.com/benx421/lzar-wallet/internal/service"
	"github.com/benx421/lzar-wallet/internal/service/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (uuid.UUID, error) {
	if token != "good" {
		return uuid.Nil, auth.ErrUnauthenticated
	}
	return testUser, nil
}

func newTestRouter(t *testing.T, svc Services, idem *rmocks.MockIdempotencyRepository) http.Handler {
	t.Helper()

	router, err := NewRouter(NewHandler(svc, testLogger()), RouterConfig{
		Verifier:    stubVerifier{},
		Idempotency: idem,
	}, testLogger())
	require.NoError(t, err)
	return router
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	router := newTestRouter(t, Services{}, rmocks.NewMockIdempotencyRepository(t))

	for _, path := range []string{"/api/v1/wallet", "/api/v1/transactions"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_TransferFlow(t *testing.T) {
	transfers := mocks.NewMockTransferer(t)
	idem := rmocks.NewMockIdempotencyRepository(t)
	router := newTestRouter(t, Services{Transfers: transfers}, idem)
	recipient := uuid.New()

	scopedKey := testUser.String() + ":key-1"
	idem.On("Reserve", mock.Anything, scopedKey, "/api/v1/transfer").Return(nil)
	idem.On("Complete", mock.Anything, mock.MatchedBy(func(k *models.IdempotencyKey) bool {
		return k.Key == scopedKey && k.ResponseStatus == http.StatusOK
	})).Return(nil)
	transfers.On("Transfer", mock.Anything, mock.MatchedBy(func(req service.TransferRequest) bool {
		return req.SenderID == testUser && req.Recipient == recipient.String()
	})).Return(completedTransfer(recipient), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer",
		strings.NewReader(`{"amount":30,"recipient":"`+recipient.String()+`"}`))
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
}

func TestRouter_RejectsInvalidBodies(t *testing.T) {
	router := newTestRouter(t, Services{Transfers: mocks.NewMockTransferer(t)}, rmocks.NewMockIdempotencyRepository(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer", strings.NewReader(`{"amount":30}`))
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Error)
}

func TestRouter_PublicRoutes(t *testing.T) {
	health := mocks.NewMockHealthChecker(t)
	health.On("PingContext", mock.Anything).Return(nil)
	router := newTestRouter(t, Services{Health: health}, rmocks.NewMockIdempotencyRepository(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lzar_http_requests_total")
}
