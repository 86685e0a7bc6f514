package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/repository"
)

// AuditService appends one Edit record per successful mutation. It is only
// called after the mutation has been applied, so a failed operation never
// leaves a partial audit entry.
type AuditService struct {
	editRepo repository.EditRepository
	log      *logrus.Entry
}

func NewAuditService(editRepo repository.EditRepository) *AuditService {
	return &AuditService{
		editRepo: editRepo,
		log:      logrus.WithField("component", "AuditService"),
	}
}

func (s *AuditService) Record(ctx context.Context, op, collection, target string, update interface{}, auth *model.Principal) error {
	edit := &model.Edit{
		ID:         uuid.NewString(),
		TimeStamp:  time.Now(),
		Op:         op,
		Collection: collection,
		Target:     target,
		Update:     update,
		Auth:       auth,
	}
	if err := s.editRepo.Insert(ctx, edit); err != nil {
		return fmt.Errorf("record edit: %w", err)
	}
	s.log.WithFields(logrus.Fields{"op": op, "collection": collection, "target": target}).Debug("edit recorded")
	return nil
}
