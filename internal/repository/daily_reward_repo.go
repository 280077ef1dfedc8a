package repository

import (
	"context"
	"fmt"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DailyRewardRepository struct {
	db *pgxpool.Pool
}

func NewDailyRewardRepository(db *pgxpool.Pool) *DailyRewardRepository {
	return &DailyRewardRepository{db: db}
}

func (r *DailyRewardRepository) List(ctx context.Context) ([]*domain.DailyReward, error) {
	var out []*domain.DailyReward
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT id, day, reward_type, reward_amount, is_special FROM daily_rewards ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("select daily rewards: %w", err)
	}
	return out, nil
}

// GetByDay returns nil, nil when the catalog has no row for day.
func (r *DailyRewardRepository) GetByDay(ctx context.Context, q DBTX, day int) (*domain.DailyReward, error) {
	var dr domain.DailyReward
	err := pgxscan.Get(ctx, q, &dr,
		`SELECT id, day, reward_type, reward_amount, is_special FROM daily_rewards WHERE day = $1`, day)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select daily reward day %d: %w", day, err)
	}
	return &dr, nil
}

// ListClaims returns the player's claims, newest first, each with its reward.
func (r *DailyRewardRepository) ListClaims(ctx context.Context, playerID int64) ([]*domain.PlayerDailyReward, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.id, c.player_id, c.reward_id, c.claimed_at, c.is_consecutive,
		        d.id, d.day, d.reward_type, d.reward_amount, d.is_special
		 FROM player_daily_rewards c
		 JOIN daily_rewards d ON d.id = c.reward_id
		 WHERE c.player_id = $1
		 ORDER BY c.claimed_at DESC, c.id DESC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select daily claims: %w", err)
	}
	defer rows.Close()

	var out []*domain.PlayerDailyReward
	for rows.Next() {
		c := &domain.PlayerDailyReward{Reward: &domain.DailyReward{}}
		if err := rows.Scan(&c.ID, &c.PlayerID, &c.RewardID, &c.ClaimedAt, &c.IsConsecutive,
			&c.Reward.ID, &c.Reward.Day, &c.Reward.RewardType, &c.Reward.RewardAmount, &c.Reward.IsSpecial); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MostRecentClaim returns nil, nil when the player never claimed.
func (r *DailyRewardRepository) MostRecentClaim(ctx context.Context, q DBTX, playerID int64) (*domain.PlayerDailyReward, error) {
	var c domain.PlayerDailyReward
	err := pgxscan.Get(ctx, q, &c,
		`SELECT id, player_id, reward_id, claimed_at, is_consecutive
		 FROM player_daily_rewards
		 WHERE player_id = $1
		 ORDER BY claimed_at DESC, id DESC
		 LIMIT 1`,
		playerID,
	)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select last daily claim: %w", err)
	}
	return &c, nil
}

func (r *DailyRewardRepository) CreateClaim(ctx context.Context, q DBTX, c *domain.PlayerDailyReward) error {
	err := q.QueryRow(ctx,
		`INSERT INTO player_daily_rewards (player_id, reward_id, claimed_at, is_consecutive)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.PlayerID, c.RewardID, c.ClaimedAt, c.IsConsecutive,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert daily claim: %w", err)
	}
	return nil
}
