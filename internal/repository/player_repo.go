package repository

import (
	"context"
	"fmt"
	"time"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const playerColumns = `id, user_id, telegram_id, username, balance, level, energy, max_energy,
	energy_regen_rate, coins_per_click, last_energy_update, last_login, created_at`

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Player, error) {
	return getPlayer(ctx, r.db, `SELECT `+playerColumns+` FROM players WHERE user_id = $1`, userID)
}

// LockByUserID selects the player FOR UPDATE; q must be a transaction.
func (r *PlayerRepository) LockByUserID(ctx context.Context, q DBTX, userID int64) (*domain.Player, error) {
	return getPlayer(ctx, q, `SELECT `+playerColumns+` FROM players WHERE user_id = $1 FOR UPDATE`, userID)
}

// Create inserts p and fills in its id.
func (r *PlayerRepository) Create(ctx context.Context, q DBTX, p *domain.Player) error {
	err := q.QueryRow(ctx,
		`INSERT INTO players (user_id, telegram_id, username, balance, level, energy, max_energy,
			energy_regen_rate, coins_per_click, last_energy_update, last_login, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		p.UserID, p.TelegramID, p.Username, p.Balance, p.Level, p.Energy, p.MaxEnergy,
		p.EnergyRegenRate, p.CoinsPerClick, p.LastEnergyUpdate, p.LastLogin, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// CreateIfMissing inserts p unless the user already has a player, then
// returns whichever row exists.
func (r *PlayerRepository) CreateIfMissing(ctx context.Context, q DBTX, p *domain.Player) (*domain.Player, error) {
	_, err := q.Exec(ctx,
		`INSERT INTO players (user_id, telegram_id, username, last_energy_update, last_login, created_at)
		 VALUES ($1, $2, $3, $4, $4, $4)
		 ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.TelegramID, p.Username, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return getPlayer(ctx, q, `SELECT `+playerColumns+` FROM players WHERE user_id = $1`, p.UserID)
}

// Update writes the full mutable state of p. Callers hold the row lock.
func (r *PlayerRepository) Update(ctx context.Context, q DBTX, p *domain.Player) error {
	tag, err := q.Exec(ctx,
		`UPDATE players
		 SET balance = $1, level = $2, energy = $3, max_energy = $4, energy_regen_rate = $5,
		     coins_per_click = $6, last_energy_update = $7, last_login = $8
		 WHERE id = $9`,
		p.Balance, p.Level, p.Energy, p.MaxEnergy, p.EnergyRegenRate,
		p.CoinsPerClick, p.LastEnergyUpdate, p.LastLogin, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update player %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (r *PlayerRepository) TouchLogin(ctx context.Context, q DBTX, userID int64, at time.Time) error {
	_, err := q.Exec(ctx, `UPDATE players SET last_login = $1 WHERE user_id = $2`, at, userID)
	return err
}

// TopByBalance returns the richest players, ranked from 1.
func (r *PlayerRepository) TopByBalance(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []*domain.LeaderboardEntry
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT id, username, balance, level, coins_per_click
		 FROM players
		 ORDER BY balance DESC, id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select top players: %w", err)
	}
	for i, e := range out {
		e.Rank = i + 1
	}
	return out, nil
}

func getPlayer(ctx context.Context, q DBTX, query string, args ...any) (*domain.Player, error) {
	var p domain.Player
	if err := pgxscan.Get(ctx, q, &p, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("select player: %w", err)
	}
	return &p, nil
}
