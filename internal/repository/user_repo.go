package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, username, password_hash, tg_id, first_name, created_at`

type UserRepository struct {
	db      *pgxpool.Pool
	players *PlayerRepository
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, players: NewPlayerRepository(db)}
}

var _ UserStore = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID)
}

func (r *UserRepository) CreateWithPlayer(ctx context.Context, u *domain.User, now time.Time) (*domain.Player, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, tg_id, first_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		u.Email, u.Username, u.PasswordHash, u.TgID, u.FirstName, now,
	).Scan(&u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.CreatedAt = now

	p := domain.NewPlayer(u.ID, u.Username, now)
	p.TelegramID = u.TgID
	if err := r.players.Create(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *UserRepository) EnsurePlayer(ctx context.Context, u *domain.User, now time.Time) (*domain.Player, error) {
	p := domain.NewPlayer(u.ID, u.Username, now)
	p.TelegramID = u.TgID
	existing, err := r.players.CreateIfMissing(ctx, r.db, p)
	if err != nil {
		return nil, err
	}
	if err := r.players.TouchLogin(ctx, r.db, u.ID, now); err != nil {
		return nil, fmt.Errorf("touch login: %w", err)
	}
	existing.LastLogin = now
	return existing, nil
}

func (r *UserRepository) get(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
