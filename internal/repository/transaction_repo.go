package repository

import (
	"context"
	"fmt"

	"clicker_game/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultLedgerPage = 100

// TransactionRepository is the balance ledger. Rows are append-only.
type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByPlayer returns the newest ledger rows first. An empty txType means all types.
func (r *TransactionRepository) ListByPlayer(ctx context.Context, playerID int64, txType string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultLedgerPage
	}
	var out []*domain.Transaction
	err := pgxscan.Select(ctx, r.db, &out, `
		SELECT id, player_id, type, amount, meta, created_at
		FROM transactions
		WHERE player_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY id DESC
		LIMIT $3`, playerID, txType, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// Create inserts a ledger entry through q (pool or open transaction).
func (r *TransactionRepository) Create(ctx context.Context, q DBTX, t *domain.Transaction) error {
	meta := t.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}
	row := q.QueryRow(ctx, `
		INSERT INTO transactions (player_id, type, amount, meta)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, t.PlayerID, t.Type, t.Amount, meta)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert transaction %s: %w", t.Type, err)
	}
	return nil
}
