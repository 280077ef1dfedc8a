package repository

import (
	"context"
	"fmt"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository writes and reads the audit_logs table.
type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts the entry and fills ID and CreatedAt. Details go to JSONB
// as-is; nil becomes an empty object.
func (r *AuditRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	details := e.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO audit_logs (user_id, action, category, details, ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		e.UserID, e.Action, e.Category, details, e.IP, e.UserAgent,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByUser returns the newest entries first.
func (r *AuditRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT id, user_id, action, category, details, ip, user_agent, created_at
		 FROM audit_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select audit logs: %w", err)
	}
	return out, nil
}
