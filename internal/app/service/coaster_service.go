package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/query"
	"coaster_catalog/internal/domain/repository"
	"coaster_catalog/internal/platform/database"
)

type CoasterService struct {
	coasterRepo repository.CoasterRepository
	audit       *AuditService
	log         *logrus.Entry
}

func NewCoasterService(coasterRepo repository.CoasterRepository, audit *AuditService) *CoasterService {
	return &CoasterService{
		coasterRepo: coasterRepo,
		audit:       audit,
		log:         logrus.WithField("component", "CoasterService"),
	}
}

type CreateCoasterRequest struct {
	Name         string `json:"name" validate:"required"`
	Park         string `json:"park" validate:"required"`
	OpeningYear  int    `json:"openingYear" validate:"required,gte=1700,lte=2030"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Status       string `json:"status,omitempty"`
	Length       string `json:"length" validate:"required"`
	Height       string `json:"height" validate:"required"`
	Drop         string `json:"drop,omitempty"`
	Speed        string `json:"speed" validate:"required"`
	Inversions   int    `json:"inversions" validate:"gte=0,lte=100"`
	GForce       *int   `json:"gForce,omitempty" validate:"omitempty,gte=0"`
}

func (s *CoasterService) List(ctx context.Context, params query.ListParams) ([]model.Coaster, error) {
	skip, limit := params.SkipLimit()
	pipeline := query.Pipeline(params.Match(time.Now()), params.CoasterSort(), skip, limit)
	return s.coasterRepo.Aggregate(ctx, pipeline)
}

func (s *CoasterService) GetByID(ctx context.Context, id string) (*model.Coaster, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid ObjectId: %w", id, common.ErrBadRequest)
	}
	return s.coasterRepo.FindByID(ctx, oid)
}

// Create persists a new coaster. The (name, park) pair must be unique; the
// pre-check mirrors the email check on registration and the compound index
// backs it up.
func (s *CoasterService) Create(ctx context.Context, principal model.Principal, req CreateCoasterRequest) (*model.Coaster, error) {
	_, err := s.coasterRepo.FindByNamePark(ctx, req.Name, req.Park)
	if err == nil {
		return nil, fmt.Errorf("coaster %q at %q already exists: %w", req.Name, req.Park, common.ErrConflict)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("check existing coaster: %w", err)
	}

	coaster := &model.Coaster{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Park:         req.Park,
		Slug:         slug.Make(req.Name + " " + req.Park),
		OpeningYear:  req.OpeningYear,
		Manufacturer: req.Manufacturer,
		Status:       req.Status,
		Length:       req.Length,
		Height:       req.Height,
		Drop:         req.Drop,
		Speed:        req.Speed,
		Inversions:   req.Inversions,
		GForce:       req.GForce,
		CreatedOn:    time.Now(),
	}

	if err := s.coasterRepo.Insert(ctx, coaster); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, model.OpNewCoaster, database.CollCoasters, coaster.ID.Hex(), coaster, &principal); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"name": coaster.Name, "park": coaster.Park}).Info("coaster created")
	return coaster, nil
}
