package repository

import (
	"context"
	"fmt"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, name, description, task_type, target_value, reward_coins, reward_energy, is_active, sort_order`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListActive возвращает все активные задания
func (r *TaskRepository) ListActive(ctx context.Context) ([]*domain.Task, error) {
	var out []*domain.Task
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT `+taskColumns+` FROM tasks WHERE is_active = true ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, q DBTX, id int64) (*domain.Task, error) {
	var t domain.Task
	err := pgxscan.Get(ctx, q, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("select task %d: %w", id, err)
	}
	return &t, nil
}

func (r *TaskRepository) ListForPlayer(ctx context.Context, playerID int64) ([]*domain.PlayerTask, error) {
	var out []*domain.PlayerTask
	err := pgxscan.Select(ctx, r.db, &out,
		`SELECT id, player_id, task_id, progress, is_completed, completed_at
		 FROM player_tasks WHERE player_id = $1`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select player tasks: %w", err)
	}
	return out, nil
}

// GetOrCreateForPlayer получает или создаёт прогресс игрока по заданию
func (r *TaskRepository) GetOrCreateForPlayer(ctx context.Context, q DBTX, playerID, taskID int64) (*domain.PlayerTask, error) {
	_, err := q.Exec(ctx,
		`INSERT INTO player_tasks (player_id, task_id)
		 VALUES ($1, $2)
		 ON CONFLICT (player_id, task_id) DO NOTHING`,
		playerID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert player task: %w", err)
	}

	var pt domain.PlayerTask
	err = pgxscan.Get(ctx, q, &pt,
		`SELECT id, player_id, task_id, progress, is_completed, completed_at
		 FROM player_tasks WHERE player_id = $1 AND task_id = $2`,
		playerID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("select player task: %w", err)
	}
	return &pt, nil
}

// Update writes progress and the claim marker.
func (r *TaskRepository) Update(ctx context.Context, q DBTX, pt *domain.PlayerTask) error {
	_, err := q.Exec(ctx,
		`UPDATE player_tasks
		 SET progress = $1, is_completed = $2, completed_at = $3
		 WHERE id = $4`,
		pt.Progress, pt.IsCompleted, pt.CompletedAt, pt.ID,
	)
	if err != nil {
		return fmt.Errorf("update player task %d: %w", pt.ID, err)
	}
	return nil
}

// SetProgress is used by the external progress tracker and test fixtures.
// The task flips to completed once progress reaches the target.
func (r *TaskRepository) SetProgress(ctx context.Context, playerID, taskID, progress int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO player_tasks (player_id, task_id, progress, is_completed)
		 SELECT $1, t.id, $3, $3 >= t.target_value FROM tasks t WHERE t.id = $2
		 ON CONFLICT (player_id, task_id) DO UPDATE
		 SET progress = EXCLUDED.progress,
		     is_completed = player_tasks.is_completed OR EXCLUDED.is_completed`,
		playerID, taskID, progress,
	)
	return err
}
