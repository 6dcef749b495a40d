package service

import (
	"context"
	"encoding/json"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OperationInput describes one audited mutation.
type OperationInput struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
	Metadata   map[string]interface{}
}

// OperationsService is the audit capability. Record is fire-and-forget:
// a logging failure must never fail the operation being logged.
type OperationsService interface {
	Record(ctx context.Context, in OperationInput)
	List(ctx context.Context, page, limit int) ([]model.OperationLog, int64, error)
}

type operationsService struct {
	repo   repository.OperationRepository
	logger zerolog.Logger
}

func NewOperationsService(repo repository.OperationRepository, logger zerolog.Logger) OperationsService {
	return &operationsService{
		repo:   repo,
		logger: logger.With().Str("component", "operations_log").Logger(),
	}
}

func (s *operationsService) Record(ctx context.Context, in OperationInput) {
	metadata := "{}"
	if in.Metadata != nil {
		if raw, err := json.Marshal(in.Metadata); err == nil {
			metadata = string(raw)
		}
	}

	entry := &model.OperationLog{
		Action:     in.Action,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		UserID:     in.UserID,
		Metadata:   metadata,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", in.Action).
			Str("entityId", in.EntityID).
			Msg("failed to record operation log")
	}
}

func (s *operationsService) List(ctx context.Context, page, limit int) ([]model.OperationLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}
