package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clicker_game/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository runs the aggregate queries behind the admin bot.
type AdminRepository struct {
	db    *pgxpool.Pool
	audit *AuditRepository
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db, audit: NewAuditRepository(db)}
}

var _ AdminStore = (*AdminRepository)(nil)

func (r *AdminRepository) Stats(ctx context.Context, dayStart, weekStart time.Time) (*domain.AdminStats, error) {
	var s domain.AdminStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM players WHERE last_login >= $1),
			(SELECT COUNT(*) FROM players WHERE last_login >= $2),
			(SELECT COALESCE(SUM(balance), 0)::bigint FROM players),
			(SELECT COALESCE(SUM(amount), 0)::bigint FROM transactions WHERE type = $3 AND created_at >= $1),
			(SELECT COUNT(*) FROM transactions WHERE type = $4 AND created_at >= $1),
			(SELECT COUNT(*) FROM player_daily_rewards WHERE claimed_at >= $1),
			(SELECT COUNT(*) FROM player_tasks WHERE completed_at >= $1)
	`, dayStart, weekStart, domain.TxTypeClick, domain.TxTypeUpgradePurchase).Scan(
		&s.TotalUsers,
		&s.ActiveToday,
		&s.ActiveWeek,
		&s.TotalBalance,
		&s.ClickCoinsToday,
		&s.UpgradesBoughtToday,
		&s.DailyClaimsToday,
		&s.TasksClaimedToday,
	)
	if err != nil {
		return nil, fmt.Errorf("select admin stats: %w", err)
	}
	return &s, nil
}

func (r *AdminRepository) ResolveUserID(ctx context.Context, identifier string) (int64, error) {
	identifier = strings.TrimPrefix(strings.TrimSpace(identifier), "@")
	if identifier == "" {
		return 0, domain.ErrUserNotFound
	}

	// сначала как tg_id, потом как внутренний id
	if n, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		var id int64
		err := r.db.QueryRow(ctx,
			`SELECT id FROM users
			 WHERE tg_id = $1 OR id = $1
			 ORDER BY (tg_id IS NOT DISTINCT FROM $1) DESC
			 LIMIT 1`, n).Scan(&id)
		return id, userLookupErr(err)
	}

	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE lower(username) = lower($1)`, identifier).Scan(&id)
	return id, userLookupErr(err)
}

func (r *AdminRepository) TelegramIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT tg_id FROM users WHERE tg_id IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select telegram ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan telegram ids: %w", err)
	}
	return ids, nil
}

func (r *AdminRepository) RecentAudit(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return r.audit.ListByUser(ctx, userID, limit)
}

func userLookupErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("resolve user: %w", err)
}
