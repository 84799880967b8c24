package sessions

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/pkg/errors"
)

// TokenClaims is the informational content of a backend bearer token.
// The client never verifies the signature; the backend remains the authority.
type TokenClaims struct {
	UserID    string
	Username  string
	UserType  string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is before now. Tokens without exp never expire.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the session token without verifying it.
func (s Session) Claims() (TokenClaims, error) {
	if !s.Authenticated() {
		return TokenClaims{}, errors.Wrap(apperrors.ErrNotAuthenticated, "[Claims] no token in session")
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(s.Token, jwtlib.MapClaims{})
	if err != nil {
		return TokenClaims{}, errors.Wrap(err, "[Claims] token is not a JWT")
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return TokenClaims{}, errors.New("[Claims] error extracting claims")
	}

	claims := TokenClaims{}
	claims.UserID, _ = mapClaims["user_id"].(string)
	claims.Username, _ = mapClaims["username"].(string)
	claims.UserType, _ = mapClaims["user_type"].(string)

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return TokenClaims{}, errors.Wrap(err, "[Claims] invalid exp claim")
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
