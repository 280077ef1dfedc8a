package repository

import (
	"context"
	"fmt"

	"clicker_game/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store on Postgres. Player operations lock the player
// row with SELECT ... FOR UPDATE for the life of the transaction.
type PgStore struct {
	db           *pgxpool.Pool
	players      *PlayerRepository
	upgrades     *UpgradeRepository
	dailyRewards *DailyRewardRepository
	tasks        *TaskRepository
	transactions *TransactionRepository
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{
		db:           db,
		players:      NewPlayerRepository(db),
		upgrades:     NewUpgradeRepository(db),
		dailyRewards: NewDailyRewardRepository(db),
		tasks:        NewTaskRepository(db),
		transactions: NewTransactionRepository(db),
	}
}

var _ Store = (*PgStore)(nil)

func (s *PgStore) PlayerByUserID(ctx context.Context, userID int64) (*domain.Player, error) {
	return s.players.GetByUserID(ctx, userID)
}

func (s *PgStore) ListActiveUpgrades(ctx context.Context) ([]*domain.Upgrade, error) {
	return s.upgrades.ListActive(ctx)
}

func (s *PgStore) ListPlayerUpgrades(ctx context.Context, playerID int64) ([]*domain.PlayerUpgrade, error) {
	return s.upgrades.ListForPlayer(ctx, playerID)
}

func (s *PgStore) ListDailyRewards(ctx context.Context) ([]*domain.DailyReward, error) {
	return s.dailyRewards.List(ctx)
}

func (s *PgStore) ListDailyClaims(ctx context.Context, playerID int64) ([]*domain.PlayerDailyReward, error) {
	return s.dailyRewards.ListClaims(ctx, playerID)
}

func (s *PgStore) ListActiveTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.ListActive(ctx)
}

func (s *PgStore) ListPlayerTasks(ctx context.Context, playerID int64) ([]*domain.PlayerTask, error) {
	return s.tasks.ListForPlayer(ctx, playerID)
}

func (s *PgStore) TopPlayers(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	return s.players.TopByBalance(ctx, limit)
}

func (s *PgStore) WithPlayerLock(ctx context.Context, userID int64, fn PlayerTxFunc) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := s.players.LockByUserID(ctx, tx, userID)
	if err != nil {
		return err
	}

	if err := fn(ctx, &pgPlayerTx{store: s, tx: tx}, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type pgPlayerTx struct {
	store *PgStore
	tx    pgx.Tx
}

func (t *pgPlayerTx) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	return t.store.players.Update(ctx, t.tx, p)
}

func (t *pgPlayerTx) GetUpgrade(ctx context.Context, id int64) (*domain.Upgrade, error) {
	return t.store.upgrades.GetByID(ctx, t.tx, id)
}

func (t *pgPlayerTx) GetOrCreatePlayerUpgrade(ctx context.Context, playerID, upgradeID int64) (*domain.PlayerUpgrade, error) {
	return t.store.upgrades.GetOrCreateForPlayer(ctx, t.tx, playerID, upgradeID)
}

func (t *pgPlayerTx) UpdatePlayerUpgrade(ctx context.Context, pu *domain.PlayerUpgrade) error {
	return t.store.upgrades.UpdateLevel(ctx, t.tx, pu)
}

func (t *pgPlayerTx) GetMostRecentDailyClaim(ctx context.Context, playerID int64) (*domain.PlayerDailyReward, error) {
	return t.store.dailyRewards.MostRecentClaim(ctx, t.tx, playerID)
}

func (t *pgPlayerTx) GetDailyReward(ctx context.Context, day int) (*domain.DailyReward, error) {
	return t.store.dailyRewards.GetByDay(ctx, t.tx, day)
}

func (t *pgPlayerTx) CreateDailyClaim(ctx context.Context, c *domain.PlayerDailyReward) error {
	return t.store.dailyRewards.CreateClaim(ctx, t.tx, c)
}

func (t *pgPlayerTx) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return t.store.tasks.GetByID(ctx, t.tx, id)
}

func (t *pgPlayerTx) GetOrCreatePlayerTask(ctx context.Context, playerID, taskID int64) (*domain.PlayerTask, error) {
	return t.store.tasks.GetOrCreateForPlayer(ctx, t.tx, playerID, taskID)
}

func (t *pgPlayerTx) UpdatePlayerTask(ctx context.Context, pt *domain.PlayerTask) error {
	return t.store.tasks.Update(ctx, t.tx, pt)
}

func (t *pgPlayerTx) RecordTransaction(ctx context.Context, tr *domain.Transaction) error {
	return t.store.transactions.Create(ctx, t.tx, tr)
}
