package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := ErrUnknownTransaction(1001)
	assert.Equal(t, "TX_1001: Unknown transaction (TX: 1001)", err.Error())

	bare := NewAppError(ErrCodeInternalServerError, "Internal server error", "", nil)
	assert.Equal(t, "SERVER_5001: Internal server error", bare.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrStoreUnavailable("load_grants", cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("reload: %w", err)
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrCodeStoreUnavailable, appErr.Code)
}

func TestGetHTTPStatusCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrUnknownTransaction(1001), 404},
		{ErrForbidden(3, "Coupons", "create"), 403},
		{ErrRegistryNotReady(), 503},
		{ErrStoreUnavailable("reload", nil), 503},
		{NewAppError(ErrCodeGrantWriteFailed, "write failed", "", nil), 502},
		{ErrInternalServerError("boom", nil), 500},
		{errors.New("plain error"), 500},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, GetHTTPStatusCode(tc.err), "error: %v", tc.err)
	}
}
