package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"coaster_catalog/internal/api/middleware"
	"coaster_catalog/internal/app/service"
	"coaster_catalog/internal/common"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/common/validate"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/query"
)

type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
	tokens      *security.TokenService
	log         *logrus.Entry
}

func NewUserHandler(authService *service.AuthService, userService *service.UserService, tokens *security.TokenService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		tokens:      tokens,
		log:         logrus.WithField("component", "UserHandler"),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)

		authed.Get("/me", h.me)
		authed.Put("/update/me", h.updateMe)

		authed.Group(func(viewers chi.Router) {
			viewers.Use(middleware.RequirePermission(model.PermViewData))
			viewers.Get("/list", h.list)
			viewers.Get("/{userId}", h.getByID)
		})

		authed.Group(func(editors chi.Router) {
			editors.Use(middleware.RequirePermission(model.PermEditAnyUser))
			editors.Put("/update/{userId}", h.update)
			editors.Delete("/{userId}", h.delete)
		})
	})
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if details := validate.Struct(&req); details != nil {
		common.RespondWithValidationErrors(w, details)
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.tokens.IssueAuthCookie(w, resp.Token)
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if details := validate.Struct(&req); details != nil {
		common.RespondWithValidationErrors(w, details)
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.tokens.IssueAuthCookie(w, resp.Token)
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	params := query.ParseListParams(r.URL.Query())
	users, err := h.userService.List(r.Context(), params)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	user, err := h.userService.GetByID(r.Context(), principal.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) getByID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateSelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if details := validate.Struct(&req); details != nil {
		common.RespondWithValidationErrors(w, details)
		return
	}

	if err := h.userService.UpdateSelf(r.Context(), principal, req); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("User %s updated!", principal.ID))
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	userID := chi.URLParam(r, "userId")

	var req service.AdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if details := validate.Struct(&req); details != nil {
		common.RespondWithValidationErrors(w, details)
		return
	}

	if err := h.userService.UpdateByAdmin(r.Context(), principal, userID, req); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("User %s updated!", userID))
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	userID := chi.URLParam(r, "userId")

	if err := h.userService.Delete(r.Context(), principal, userID); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("User %s deleted!", userID))
}

func (h *UserHandler) respondError(w http.ResponseWriter, err error) {
	respondError(w, h.log, err)
}
