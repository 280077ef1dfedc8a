package repository

import (
	"context"
	"time"

	"clicker_game/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PlayerTxFunc runs with the player row locked. Returning an error rolls
// back every write made through tx.
type PlayerTxFunc func(ctx context.Context, tx PlayerTx, p *domain.Player) error

// Store is the game's persistence contract: read-side queries plus a
// per-player serialized transaction.
type Store interface {
	PlayerByUserID(ctx context.Context, userID int64) (*domain.Player, error)
	ListActiveUpgrades(ctx context.Context) ([]*domain.Upgrade, error)
	ListPlayerUpgrades(ctx context.Context, playerID int64) ([]*domain.PlayerUpgrade, error)
	ListDailyRewards(ctx context.Context) ([]*domain.DailyReward, error)
	ListDailyClaims(ctx context.Context, playerID int64) ([]*domain.PlayerDailyReward, error)
	ListActiveTasks(ctx context.Context) ([]*domain.Task, error)
	ListPlayerTasks(ctx context.Context, playerID int64) ([]*domain.PlayerTask, error)
	TopPlayers(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error)

	// WithPlayerLock loads the player owned by userID with a row lock and
	// runs fn inside the same transaction. Operations on one player are
	// serialized; different players never block each other.
	WithPlayerLock(ctx context.Context, userID int64, fn PlayerTxFunc) error
}

// PlayerTx is the write side available while a player is locked.
type PlayerTx interface {
	UpdatePlayer(ctx context.Context, p *domain.Player) error

	GetUpgrade(ctx context.Context, id int64) (*domain.Upgrade, error)
	GetOrCreatePlayerUpgrade(ctx context.Context, playerID, upgradeID int64) (*domain.PlayerUpgrade, error)
	UpdatePlayerUpgrade(ctx context.Context, pu *domain.PlayerUpgrade) error

	// GetMostRecentDailyClaim returns nil when the player never claimed.
	GetMostRecentDailyClaim(ctx context.Context, playerID int64) (*domain.PlayerDailyReward, error)
	// GetDailyReward returns nil when no catalog row exists for day.
	GetDailyReward(ctx context.Context, day int) (*domain.DailyReward, error)
	CreateDailyClaim(ctx context.Context, c *domain.PlayerDailyReward) error

	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	GetOrCreatePlayerTask(ctx context.Context, playerID, taskID int64) (*domain.PlayerTask, error)
	UpdatePlayerTask(ctx context.Context, pt *domain.PlayerTask) error

	RecordTransaction(ctx context.Context, t *domain.Transaction) error
}

// UserStore backs authentication.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTgID(ctx context.Context, tgID int64) (*domain.User, error)
	// CreateWithPlayer inserts the user and its starting player atomically.
	CreateWithPlayer(ctx context.Context, u *domain.User, now time.Time) (*domain.Player, error)
	// EnsurePlayer creates the player for u if missing and stamps last login.
	EnsurePlayer(ctx context.Context, u *domain.User, now time.Time) (*domain.Player, error)
}

// AdminStore backs the operator tooling.
type AdminStore interface {
	Stats(ctx context.Context, dayStart, weekStart time.Time) (*domain.AdminStats, error)
	// ResolveUserID maps "@username", a Telegram id or a user id to the
	// user id. Numbers are tried as a Telegram id first.
	ResolveUserID(ctx context.Context, identifier string) (int64, error)
	TelegramIDs(ctx context.Context) ([]int64, error)
	// RecentAudit returns the user's newest audit entries first.
	RecentAudit(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}
