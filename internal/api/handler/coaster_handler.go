package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"coaster_catalog/internal/api/middleware"
	"coaster_catalog/internal/app/service"
	"coaster_catalog/internal/common"
	"coaster_catalog/internal/common/validate"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/query"
)

type CoasterHandler struct {
	coasterService *service.CoasterService
	log            *logrus.Entry
}

func NewCoasterHandler(coasterService *service.CoasterService) *CoasterHandler {
	return &CoasterHandler{
		coasterService: coasterService,
		log:            logrus.WithField("component", "CoasterHandler"),
	}
}

func (h *CoasterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/list", h.list)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Get("/{coasterId}", h.getByID)

		authed.Group(func(editors chi.Router) {
			editors.Use(middleware.RequirePermission(model.PermEditCoasters))
			editors.Post("/new", h.create)
		})
	})
}

func (h *CoasterHandler) list(w http.ResponseWriter, r *http.Request) {
	params := query.ParseListParams(r.URL.Query())
	params.Role = "" // role filter is a user-listing concern

	coasters, err := h.coasterService.List(r.Context(), params)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, coasters)
}

func (h *CoasterHandler) getByID(w http.ResponseWriter, r *http.Request) {
	coasterID := chi.URLParam(r, "coasterId")
	coaster, err := h.coasterService.GetByID(r.Context(), coasterID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, coaster)
}

func (h *CoasterHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateCoasterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if details := validate.Struct(&req); details != nil {
		common.RespondWithValidationErrors(w, details)
		return
	}

	coaster, err := h.coasterService.Create(r.Context(), principal, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, coaster)
}
