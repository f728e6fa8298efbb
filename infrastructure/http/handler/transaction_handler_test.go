package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/http/middleware"
)

// stubExecutor records the dispatch call and replies with a canned result.
type stubExecutor struct {
	tx     int64
	ectx   domain.ExecutionContext
	params interface{}
	result *domain.Result
}

func (s *stubExecutor) Execute(ctx context.Context, tx int64, ectx domain.ExecutionContext, params interface{}) *domain.Result {
	s.tx = tx
	s.ectx = ectx
	s.params = params
	return s.result
}

// stubTokenService accepts exactly one token string.
type stubTokenService struct {
	token  string
	claims outbound.TokenClaims
}

func (s *stubTokenService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	return s.token, nil
}

func (s *stubTokenService) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	if token != s.token {
		return nil, errors.New("invalid token")
	}
	claims := s.claims
	return &claims, nil
}

func newTestRouter(executor *stubExecutor) (*mux.Router, *stubTokenService) {
	tokens := &stubTokenService{
		token:  "valid-token",
		claims: outbound.TokenClaims{UserID: 42, ProfileID: 2, Username: "alice"},
	}
	auth := middleware.NewAuthMiddleware(tokens, 1)

	router := mux.NewRouter()
	NewTransactionHandler(executor, auth).RegisterRoutes(router)
	return router, tokens
}

func postTX(router *mux.Router, body string, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/tx", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestExecuteDispatchesAuthenticated(t *testing.T) {
	executor := &stubExecutor{result: domain.OK("success", map[string]interface{}{"id": 7})}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{"tx": 1001, "params": {"username": "alice"}}`, "valid-token")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(1001), executor.tx)
	assert.Equal(t, int64(42), executor.ectx.UserID)
	assert.Equal(t, int64(2), executor.ectx.ProfileID)
	assert.Equal(t, map[string]interface{}{"username": "alice"}, executor.params)

	var result domain.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, domain.CodeOK, result.Code)
	assert.Equal(t, "success", result.Msg)
}

func TestExecuteAnonymousRunsUnderPublicProfile(t *testing.T) {
	executor := &stubExecutor{result: domain.OK("success", nil)}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{"tx": 1001}`, "")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(0), executor.ectx.UserID)
	assert.Equal(t, int64(1), executor.ectx.ProfileID)
	assert.True(t, executor.ectx.IsAnonymous())
}

func TestExecuteBadTokenFallsBackToAnonymous(t *testing.T) {
	executor := &stubExecutor{result: domain.OK("success", nil)}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{"tx": 1001}`, "forged-token")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, executor.ectx.IsAnonymous())
}

func TestExecuteInvalidBody(t *testing.T) {
	executor := &stubExecutor{result: domain.OK("success", nil)}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{not json`, "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Zero(t, executor.tx)
}

func TestExecuteRejectsBadTXCodes(t *testing.T) {
	executor := &stubExecutor{result: domain.OK("success", nil)}
	router, _ := newTestRouter(executor)

	for _, body := range []string{
		`{"tx": 0}`,
		`{"tx": -5}`,
		`{"tx": 3.14}`,
		`{"tx": "abc"}`,
		`{}`,
	} {
		recorder := postTX(router, body, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "body: %s", body)
	}

	assert.Zero(t, executor.tx)
}

func TestExecuteForbiddenResultMapsToHTTPStatus(t *testing.T) {
	executor := &stubExecutor{result: domain.Fail(domain.CodeForbidden, "permission denied")}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{"tx": 1001}`, "")

	assert.Equal(t, http.StatusForbidden, recorder.Code)

	var result domain.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, domain.CodeForbidden, result.Code)
	assert.Equal(t, "permission denied", result.Msg)
}

func TestExecuteBusinessCodePassesThrough(t *testing.T) {
	executor := &stubExecutor{result: domain.Fail(422, "validation failed", "sku is required")}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{"tx": 2001}`, "")

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var result domain.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, 422, result.Code)
	assert.Equal(t, []string{"sku is required"}, result.Alerts)
}

func TestExecuteUnmappableCodeStaysInBody(t *testing.T) {
	// A handler-defined code with no HTTP meaning rides in the body only.
	executor := &stubExecutor{result: domain.Fail(460, "quota exceeded")}
	router, _ := newTestRouter(executor)

	recorder := postTX(router, `{"tx": 2001}`, "")

	assert.Equal(t, http.StatusOK, recorder.Code)

	var result domain.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, 460, result.Code)
}
