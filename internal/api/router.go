package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"coaster_catalog/internal/api/handler"
	"coaster_catalog/internal/app/service"
	"coaster_catalog/internal/common/security"
)

func NewRouter(
	tokens *security.TokenService,
	authService *service.AuthService,
	userService *service.UserService,
	coasterService *service.CoasterService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// The session token travels in the authToken cookie, so the verifier is
	// given a cookie finder instead of the default Authorization-header one.
	// Verification failures surface in Authenticator on protected groups.
	r.Use(jwtauth.Verify(tokens.Auth(), security.TokenFromAuthCookie))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		userHandler := handler.NewUserHandler(authService, userService, tokens)
		api.Route("/users", userHandler.RegisterRoutes)

		coasterHandler := handler.NewCoasterHandler(coasterService)
		api.Route("/coasters", coasterHandler.RegisterRoutes)
	})

	return r
}
