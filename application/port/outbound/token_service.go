package outbound

// TokenClaims is the identity carried by an access token. The auth
// middleware turns it into a domain.ExecutionContext.
type TokenClaims struct {
	UserID    int64
	ProfileID int64
	Username  string
}

type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}
