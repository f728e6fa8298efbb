package auth

import (
	"context"
	"errors"
	"time"

	"github.com/txgate/txgate/application/port/inbound"
	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// AuthUseCase is the Auth business object: its methods are invoked
// through the transaction dispatcher, not through dedicated routes.
type AuthUseCase struct {
	userRepository  outbound.UserRepository
	tokenService    outbound.TokenService
	passwordService inbound.PasswordService
	logger          logger.Logger
	accessTokenTTL  time.Duration
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	tokenService outbound.TokenService,
	passwordService inbound.PasswordService,
	log logger.Logger,
	accessTokenTTL time.Duration,
) *AuthUseCase {
	return &AuthUseCase{
		userRepository:  userRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
		logger:          log,
		accessTokenTTL:  accessTokenTTL,
	}
}

// LoginResponse is the data payload of a successful Auth.login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      int64  `json:"user_id"`
	ProfileID   int64  `json:"profile_id"`
	Username    string `json:"username"`
}

// Login authenticates by username and password and issues an access
// token. Unknown users and wrong passwords produce the same envelope.
func (uc *AuthUseCase) Login(ctx context.Context, ectx domain.ExecutionContext, params interface{}) (*domain.Result, error) {
	username := paramString(params, "username")
	pass := paramString(params, "password")

	if username == "" || pass == "" {
		return domain.Fail(domain.CodeBadRequest, "login failed", "username and password are required"), nil
	}

	user, err := uc.userRepository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "login_failed_user_not_found", "MEDIUM", map[string]interface{}{
				"username": username,
			})
			return domain.Fail(domain.CodeForbidden, "login failed", "invalid credentials"), nil
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"username": username,
		})
		return nil, err
	}

	if !user.IsActive() {
		logger.LogSecurityEvent(ctx, uc.logger, "login_failed_user_disabled", "MEDIUM", map[string]interface{}{
			"user_id": user.ID,
		})
		return domain.Fail(domain.CodeForbidden, "login failed", "invalid credentials"), nil
	}

	valid, err := uc.passwordService.VerifyPassword(pass, user.Password)
	if err != nil {
		uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	if !valid {
		logger.LogSecurityEvent(ctx, uc.logger, "login_failed_invalid_password", "MEDIUM", map[string]interface{}{
			"user_id": user.ID,
		})
		return domain.Fail(domain.CodeForbidden, "login failed", "invalid credentials"), nil
	}

	accessToken, err := uc.tokenService.GenerateAccessToken(outbound.TokenClaims{
		UserID:    user.ID,
		ProfileID: user.ProfileID,
		Username:  user.Username,
	})
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	uc.logger.Info(ctx, "Login successful", map[string]interface{}{
		"user_id":    user.ID,
		"profile_id": user.ProfileID,
	})

	return domain.OK("login successful", LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(uc.accessTokenTTL.Seconds()),
		UserID:      user.ID,
		ProfileID:   user.ProfileID,
		Username:    user.Username,
	}), nil
}

// MeResponse is the data payload of Auth.me.
type MeResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ProfileID int64  `json:"profile_id"`
}

// Me returns the calling user's profile.
func (uc *AuthUseCase) Me(ctx context.Context, ectx domain.ExecutionContext, params interface{}) (*domain.Result, error) {
	if ectx.IsAnonymous() {
		return domain.Fail(domain.CodeForbidden, "not authenticated"), nil
	}

	user, err := uc.userRepository.FindByID(ctx, ectx.UserID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return domain.Fail(domain.CodeUnknownTransaction, "user not found"), nil
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": ectx.UserID,
		})
		return nil, err
	}

	return domain.OK("success", MeResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ProfileID: user.ProfileID,
	}), nil
}

// paramString extracts a string field from a JSON-decoded parameter bag.
func paramString(params interface{}, key string) string {
	bag, ok := params.(map[string]interface{})
	if !ok {
		return ""
	}
	value, _ := bag[key].(string)
	return value
}
