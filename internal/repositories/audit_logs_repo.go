package repositories

import (
	"context"
	"fmt"

	"imeitrack/internal/models"

	"github.com/google/uuid"
)

type AuditLogsRepository interface {
	// Append inserts a new immutable entry and fills in its Seq and
	// CreatedAt from the store. There is no update or delete: the log is
	// append-only.
	Append(ctx context.Context, entry *models.AuditLog) error

	List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error)
	GetByRecord(ctx context.Context, recordID string, limit, offset int) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepo(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Append(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `
		INSERT INTO audit_logs (id, action, record_id, actor_id, actor_name, actor_role, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq, created_at
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query,
		entry.ID,
		entry.Action,
		entry.RecordID,
		entry.ActorID,
		entry.ActorName,
		entry.ActorRole,
		[]byte(entry.Details),
	).Scan(&entry.Seq, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

func (r *auditLogsRepo) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if filters.Limit <= 0 || filters.Limit > 1000 {
		filters.Limit = 50
	}

	query := `
		SELECT id, seq, action, record_id, actor_id, actor_name, actor_role, details, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 0

	if filters.Action != nil {
		argIdx++
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, *filters.Action)
	}
	if filters.RecordID != nil {
		argIdx++
		query += fmt.Sprintf(" AND record_id = $%d", argIdx)
		args = append(args, *filters.RecordID)
	}
	if filters.ActorID != nil {
		argIdx++
		query += fmt.Sprintf(" AND actor_id = $%d", argIdx)
		args = append(args, *filters.ActorID)
	}
	if filters.StartDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *filters.StartDate)
	}
	if filters.EndDate != nil {
		argIdx++
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *filters.EndDate)
	}

	query += " ORDER BY seq DESC"
	argIdx++
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filters.Limit)
	if filters.Offset > 0 {
		argIdx++
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := dbFrom(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		var details []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.Seq,
			&entry.Action,
			&entry.RecordID,
			&entry.ActorID,
			&entry.ActorName,
			&entry.ActorRole,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.Details = details
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *auditLogsRepo) GetByRecord(ctx context.Context, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	filters := &models.AuditLogFilters{
		RecordID: &recordID,
		Limit:    limit,
		Offset:   offset,
	}
	return r.List(ctx, filters)
}
