package security

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"coaster_catalog/internal/domain/model"
)

// AuthCookieName is the http-only cookie the session token travels in.
const AuthCookieName = "authToken"

// TokenService signs and verifies session tokens. The same instance backs
// the router's verifier middleware and the auth service's issuance path.
type TokenService struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenService(key []byte, exp time.Duration) *TokenService {
	return &TokenService{
		auth: jwtauth.New("HS256", key, nil),
		exp:  exp,
	}
}

func (t *TokenService) Auth() *jwtauth.JWTAuth {
	return t.auth
}

// GenerateToken builds the claim payload for a user with its resolved
// permission set and signs it.
func (t *TokenService) GenerateToken(user *model.User, permissions map[string]bool) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"_id":         user.ID.Hex(),
		"email":       user.Email,
		"role":        user.Role,
		"permissions": permissions,
		"exp":         now.Add(t.exp).Unix(),
		"iat":         now.Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// IssueAuthCookie attaches the signed token as an http-only cookie.
func (t *TokenService) IssueAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.exp.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromAuthCookie is the find-token function handed to the jwtauth
// verifier; the session travels in a cookie, not the Authorization header.
func TokenFromAuthCookie(r *http.Request) string {
	cookie, err := r.Cookie(AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Helper functions to extract claims, used by middleware and handlers.

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["_id"].(string)
	if !ok {
		return "", errors.New("_id claim is missing or not a string")
	}
	return id, nil
}

func GetEmailFromClaims(claims jwt.MapClaims) (string, error) {
	email, ok := claims["email"].(string)
	if !ok {
		return "", errors.New("email claim is missing or not a string")
	}
	return email, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

// GetPermissionsFromClaims decodes the permissions claim. JSON round-trips
// the map as map[string]interface{}, so both shapes are accepted.
func GetPermissionsFromClaims(claims jwt.MapClaims) map[string]bool {
	permissions := make(map[string]bool)
	switch raw := claims["permissions"].(type) {
	case map[string]bool:
		for name, granted := range raw {
			permissions[name] = granted
		}
	case map[string]interface{}:
		for name, granted := range raw {
			if b, ok := granted.(bool); ok && b {
				permissions[name] = true
			}
		}
	}
	return permissions
}
