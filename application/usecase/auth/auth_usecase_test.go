package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/domain/entity"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// Mock implementations

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.TokenClaims), args.Error(1)
}

type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordService) VerifyPassword(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func testLogger() logger.Logger {
	return logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       "panic",
		Format:      "text",
		ServiceName: "test",
	})
}

func activeUser() *entity.User {
	return &entity.User{
		ID:        42,
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "hashed-password",
		ProfileID: 2,
		Status:    entity.UserStatusActive,
	}
}

func loginParams(username, password string) map[string]interface{} {
	return map[string]interface{}{"username": username, "password": password}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	mockPasswords := new(MockPasswordService)

	user := activeUser()
	mockRepo.On("FindByUsername", ctx, "alice").Return(user, nil)
	mockPasswords.On("VerifyPassword", "s3cret", "hashed-password").Return(true, nil)
	mockTokens.On("GenerateAccessToken", outbound.TokenClaims{
		UserID:    42,
		ProfileID: 2,
		Username:  "alice",
	}).Return("signed-token", nil)

	uc := NewAuthUseCase(mockRepo, mockTokens, mockPasswords, testLogger(), 15*time.Minute)

	result, err := uc.Login(ctx, domain.ExecutionContext{ProfileID: 1}, loginParams("alice", "s3cret"))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Data.(LoginResponse)
	require.True(t, ok)
	assert.Equal(t, "signed-token", payload.AccessToken)
	assert.Equal(t, 900, payload.ExpiresIn)
	assert.Equal(t, int64(42), payload.UserID)
	assert.Equal(t, int64(2), payload.ProfileID)
	assert.Equal(t, "alice", payload.Username)

	mockRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
	mockPasswords.AssertExpectations(t)
}

func TestLoginMissingFields(t *testing.T) {
	uc := NewAuthUseCase(new(MockUserRepository), new(MockTokenService), new(MockPasswordService), testLogger(), time.Minute)

	for _, params := range []interface{}{
		nil,
		loginParams("", "s3cret"),
		loginParams("alice", ""),
		"not-an-object",
	} {
		result, err := uc.Login(context.Background(), domain.ExecutionContext{}, params)
		require.NoError(t, err)
		assert.Equal(t, domain.CodeBadRequest, result.Code)
	}
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	// Unknown user, disabled user, and wrong password all produce the
	// same envelope, so callers cannot probe which usernames exist.
	ctx := context.Background()

	unknownRepo := new(MockUserRepository)
	unknownRepo.On("FindByUsername", ctx, "alice").Return(nil, outbound.ErrUserNotFound)

	disabled := activeUser()
	disabled.Status = entity.UserStatusDisabled
	disabledRepo := new(MockUserRepository)
	disabledRepo.On("FindByUsername", ctx, "alice").Return(disabled, nil)

	wrongPassRepo := new(MockUserRepository)
	wrongPassRepo.On("FindByUsername", ctx, "alice").Return(activeUser(), nil)
	wrongPass := new(MockPasswordService)
	wrongPass.On("VerifyPassword", "s3cret", "hashed-password").Return(false, nil)

	cases := []struct {
		name      string
		repo      *MockUserRepository
		passwords *MockPasswordService
	}{
		{"UserNotFound", unknownRepo, new(MockPasswordService)},
		{"UserDisabled", disabledRepo, new(MockPasswordService)},
		{"WrongPassword", wrongPassRepo, wrongPass},
	}

	var envelopes []*domain.Result
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := NewAuthUseCase(tc.repo, new(MockTokenService), tc.passwords, testLogger(), time.Minute)

			result, err := uc.Login(ctx, domain.ExecutionContext{}, loginParams("alice", "s3cret"))
			require.NoError(t, err)
			assert.Equal(t, domain.CodeForbidden, result.Code)
			envelopes = append(envelopes, result)
		})
	}

	require.Len(t, envelopes, 3)
	assert.Equal(t, envelopes[0], envelopes[1])
	assert.Equal(t, envelopes[1], envelopes[2])
}

func TestLoginRepositoryError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", ctx, "alice").Return(nil, errors.New("connection refused"))

	uc := NewAuthUseCase(mockRepo, new(MockTokenService), new(MockPasswordService), testLogger(), time.Minute)

	_, err := uc.Login(ctx, domain.ExecutionContext{}, loginParams("alice", "s3cret"))
	assert.Error(t, err)
}

func TestMeSuccess(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", ctx, int64(42)).Return(activeUser(), nil)

	uc := NewAuthUseCase(mockRepo, new(MockTokenService), new(MockPasswordService), testLogger(), time.Minute)

	result, err := uc.Me(ctx, domain.ExecutionContext{UserID: 42, ProfileID: 2, Username: "alice"}, nil)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	payload, ok := result.Data.(MeResponse)
	require.True(t, ok)
	assert.Equal(t, int64(42), payload.ID)
	assert.Equal(t, "alice", payload.Username)
	assert.Equal(t, "alice@example.com", payload.Email)
	assert.Equal(t, int64(2), payload.ProfileID)
}

func TestMeAnonymous(t *testing.T) {
	uc := NewAuthUseCase(new(MockUserRepository), new(MockTokenService), new(MockPasswordService), testLogger(), time.Minute)

	result, err := uc.Me(context.Background(), domain.ExecutionContext{ProfileID: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.CodeForbidden, result.Code)
}
