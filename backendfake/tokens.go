package backendfake

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenPayload struct {
	UserID   int
	Username string
	UserType string
}

func (s *Server) createToken(userID int, username, userType string) (string, error) {
	now := s.nowTime()
	claims := jwtlib.MapClaims{
		"user_id":   strconv.Itoa(userID),
		"username":  username,
		"user_type": userType,
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenExpiry).Unix(),
		"jti":       uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// verifyToken checks the bearer token and writes the error response itself
// when it is missing or invalid.
func (s *Server) verifyToken(w http.ResponseWriter, r *http.Request) (tokenPayload, bool) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		writeDetail(w, http.StatusForbidden, "Not authenticated")
		return tokenPayload{}, false
	}

	token, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(s.nowTime))
	if err != nil || !token.Valid {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return tokenPayload{}, false
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return tokenPayload{}, false
	}
	idStr, _ := claims["user_id"].(string)
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return tokenPayload{}, false
	}
	username, _ := claims["username"].(string)
	userType, _ := claims["user_type"].(string)
	return tokenPayload{UserID: id, Username: username, UserType: userType}, true
}

func (p tokenPayload) isAdministrative() bool {
	return p.UserType == userTypeMaster || p.UserType == userTypeAdmin
}
