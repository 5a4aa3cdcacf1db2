package services

import (
	"context"
	"errors"

	"imeitrack/internal/models"
	"imeitrack/internal/repositories"
)

type AuditLogsService interface {
	// LogAction appends an entry with a typed details payload. Must be
	// called inside the same transaction as the mutation it records.
	LogAction(ctx context.Context, actor *models.Actor, action, recordID string, details any) (*models.AuditLog, error)

	ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetRecordHistory(ctx context.Context, recordID string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
	}
}

func (s *auditLogsService) LogAction(ctx context.Context, actor *models.Actor, action, recordID string, details any) (*models.AuditLog, error) {
	if action == "" {
		return nil, errors.New("action is required")
	}
	if actor == nil {
		return nil, errors.New("actor is required")
	}

	raw, err := models.EncodeDetails(details)
	if err != nil {
		return nil, err
	}

	entry := &models.AuditLog{
		Action:    action,
		RecordID:  recordID,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Details:   raw,
	}
	if err := s.auditLogsRepo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *auditLogsService) ListAuditLogs(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{Limit: 50}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}
	return s.auditLogsRepo.List(ctx, filters)
}

func (s *auditLogsService) GetRecordHistory(ctx context.Context, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditLogsRepo.GetByRecord(ctx, recordID, limit, offset)
}
