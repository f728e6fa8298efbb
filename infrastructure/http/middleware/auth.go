package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/txgate/txgate/application/port/outbound"
	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/infrastructure/http/response"
)

type contextKey string

const execContextKey contextKey = "exec_context"

type AuthMiddleware struct {
	tokenService    outbound.TokenService
	publicProfileID int64
}

func NewAuthMiddleware(tokenService outbound.TokenService, publicProfileID int64) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService:    tokenService,
		publicProfileID: publicProfileID,
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.claimsFromRequest(r)
		if !ok {
			response.Unauthorized(w, "Invalid or missing bearer token")
			return
		}

		ctx := withExecContext(r.Context(), execContextFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalAuth builds an ExecutionContext from the bearer token when one
// is present and valid; otherwise the request runs anonymously under the
// public profile. The single transaction endpoint uses this: whether a
// given TX needs authentication is decided by the permission cache, not
// by the route.
func (m *AuthMiddleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ectx := domain.ExecutionContext{ProfileID: m.publicProfileID}
		if claims, ok := m.claimsFromRequest(r); ok {
			ectx = execContextFromClaims(claims)
		}

		ctx := withExecContext(r.Context(), ectx)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *AuthMiddleware) claimsFromRequest(r *http.Request) (*outbound.TokenClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, false
	}

	claims, err := m.tokenService.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

func execContextFromClaims(claims *outbound.TokenClaims) domain.ExecutionContext {
	return domain.ExecutionContext{
		UserID:    claims.UserID,
		ProfileID: claims.ProfileID,
		Username:  claims.Username,
	}
}

func withExecContext(ctx context.Context, ectx domain.ExecutionContext) context.Context {
	return context.WithValue(ctx, execContextKey, ectx)
}

// GetExecContext retrieves the ExecutionContext placed by RequireAuth or
// OptionalAuth. The second return is false when neither ran.
func GetExecContext(ctx context.Context) (domain.ExecutionContext, bool) {
	ectx, ok := ctx.Value(execContextKey).(domain.ExecutionContext)
	return ectx, ok
}
