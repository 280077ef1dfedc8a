package service

import (
	"context"

	"clicker_game/internal/domain"
	"clicker_game/internal/logger"
)

// AuditWriter persists audit entries. *repository.AuditRepository satisfies it.
type AuditWriter interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// AuditService handles audit logging. A nil *AuditService discards entries.
type AuditService struct {
	repo AuditWriter
}

func NewAuditService(repo AuditWriter) *AuditService {
	return &AuditService{repo: repo}
}

type clientInfoKey struct{}

type clientInfo struct {
	ip, userAgent string
}

// WithClientInfo attaches the caller's IP and User-Agent; Log copies them
// into every entry written with the returned context.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// Log creates a new audit log entry. Failures are logged, never returned.
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	entry := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}
	if ci, ok := ctx.Value(clientInfoKey{}).(clientInfo); ok {
		entry.IP, entry.UserAgent = ci.ip, ci.userAgent
	}
	s.write(ctx, entry)
}

func (s *AuditService) write(ctx context.Context, entry *domain.AuditLog) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", entry.Action, "user_id", entry.UserID)
	}
}
