package repository

import (
	"context"
	"fmt"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upgradeColumns = `id, name, description, icon, base_cost, cost_multiplier, upgrade_type,
	base_effect_value, effect_per_level, max_level, is_active, sort_order`

type UpgradeRepository struct {
	db *pgxpool.Pool
}

func NewUpgradeRepository(db *pgxpool.Pool) *UpgradeRepository {
	return &UpgradeRepository{db: db}
}

func (r *UpgradeRepository) ListActive(ctx context.Context) ([]*domain.Upgrade, error) {
	var out []*domain.Upgrade
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT `+upgradeColumns+` FROM upgrades WHERE is_active = true ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("select upgrades: %w", err)
	}
	return out, nil
}

// GetByID returns the upgrade regardless of is_active.
func (r *UpgradeRepository) GetByID(ctx context.Context, q DBTX, id int64) (*domain.Upgrade, error) {
	var u domain.Upgrade
	err := pgxscan.Get(ctx, q, &u, `SELECT `+upgradeColumns+` FROM upgrades WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrUpgradeNotFound
		}
		return nil, fmt.Errorf("select upgrade %d: %w", id, err)
	}
	return &u, nil
}

func (r *UpgradeRepository) ListForPlayer(ctx context.Context, playerID int64) ([]*domain.PlayerUpgrade, error) {
	var out []*domain.PlayerUpgrade
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT id, player_id, upgrade_id, level, purchased_at
		 FROM player_upgrades WHERE player_id = $1`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select player upgrades: %w", err)
	}
	return out, nil
}

// GetOrCreateForPlayer returns the player's row for the upgrade, inserting a
// level 0 row first if none exists. An aborted transaction discards the insert.
func (r *UpgradeRepository) GetOrCreateForPlayer(ctx context.Context, q DBTX, playerID, upgradeID int64) (*domain.PlayerUpgrade, error) {
	_, err := q.Exec(ctx,
		`INSERT INTO player_upgrades (player_id, upgrade_id, level)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (player_id, upgrade_id) DO NOTHING`,
		playerID, upgradeID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert player upgrade: %w", err)
	}

	var pu domain.PlayerUpgrade
	err = pgxscan.Get(ctx, q, &pu,
		`SELECT id, player_id, upgrade_id, level, purchased_at
		 FROM player_upgrades WHERE player_id = $1 AND upgrade_id = $2`,
		playerID, upgradeID,
	)
	if err != nil {
		return nil, fmt.Errorf("select player upgrade: %w", err)
	}
	return &pu, nil
}

func (r *UpgradeRepository) UpdateLevel(ctx context.Context, q DBTX, pu *domain.PlayerUpgrade) error {
	_, err := q.Exec(ctx,
		`UPDATE player_upgrades SET level = $1, purchased_at = $2 WHERE id = $3`,
		pu.Level, pu.PurchasedAt, pu.ID,
	)
	if err != nil {
		return fmt.Errorf("update player upgrade %d: %w", pu.ID, err)
	}
	return nil
}
