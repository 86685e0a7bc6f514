package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/domain/model"
)

type contextKey string

const principalCtxKey contextKey = "principal"

// Authenticator turns a verified session cookie into a Principal on the
// request context. Requests without a valid token are rejected here, before
// any handler or data access runs.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "You must be logged in")
			return
		}

		principal, err := principalFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), principalCtxKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromClaims(claims jwt.MapClaims) (model.Principal, error) {
	id, err := security.GetUserIDFromClaims(claims)
	if err != nil {
		return model.Principal{}, err
	}
	email, err := security.GetEmailFromClaims(claims)
	if err != nil {
		return model.Principal{}, err
	}
	role, err := security.GetUserRoleFromClaims(claims)
	if err != nil {
		return model.Principal{}, err
	}
	return model.Principal{
		ID:          id,
		Email:       email,
		Role:        role,
		Permissions: security.GetPermissionsFromClaims(claims),
	}, nil
}

// RequirePermission gates a route on a named permission from the session's
// resolved permission set.
func RequirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "You must be logged in")
				return
			}
			if !principal.HasPermission(name) {
				common.RespondWithError(w, http.StatusForbidden, "You do not have permission to do that")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetPrincipal(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey).(model.Principal)
	return principal, ok
}

// WithPrincipal injects a principal directly; used by handler tests.
func WithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, principal)
}
