package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"clicker_game/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	email := "a@example.com"
	p, err := s.CreateWithPlayer(ctx, &domain.User{Email: &email, Username: "a"}, time.Now())
	require.NoError(t, err)
	u := s.AddUpgrade(&domain.Upgrade{Name: "x", BaseCost: 10, CostMultiplier: 2, MaxLevel: 5, IsActive: true})

	boom := errors.New("boom")
	err = s.WithPlayerLock(ctx, p.UserID, func(ctx context.Context, tx PlayerTx, pl *domain.Player) error {
		pu, err := tx.GetOrCreatePlayerUpgrade(ctx, pl.ID, u.ID)
		require.NoError(t, err)
		pu.Level = 3
		require.NoError(t, tx.UpdatePlayerUpgrade(ctx, pu))
		pl.Balance = 999
		require.NoError(t, tx.UpdatePlayer(ctx, pl))
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := s.PlayerByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Balance)

	ups, err := s.ListPlayerUpgrades(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ups, "lazily created row must be discarded")
}

func TestMemoryStoreCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, err := s.CreateWithPlayer(ctx, &domain.User{Username: "b"}, time.Now())
	require.NoError(t, err)

	err = s.WithPlayerLock(ctx, p.UserID, func(ctx context.Context, tx PlayerTx, pl *domain.Player) error {
		pl.Balance = 42
		if err := tx.UpdatePlayer(ctx, pl); err != nil {
			return err
		}
		return tx.RecordTransaction(ctx, &domain.Transaction{PlayerID: pl.ID, Type: domain.TxTypeClick, Amount: 42})
	})
	require.NoError(t, err)

	after, err := s.PlayerByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), after.Balance)
	assert.Len(t, s.Transactions(p.ID), 1)
}

func TestMemoryStoreUnknownPlayer(t *testing.T) {
	err := NewMemoryStore().WithPlayerLock(context.Background(), 404, func(context.Context, PlayerTx, *domain.Player) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	email := "dup@example.com"
	_, err := s.CreateWithPlayer(ctx, &domain.User{Email: &email, Username: "one"}, time.Now())
	require.NoError(t, err)
	upper := "DUP@example.com"
	_, err = s.CreateWithPlayer(ctx, &domain.User{Email: &upper, Username: "two"}, time.Now())
	assert.ErrorIs(t, err, domain.ErrUserExists)
}
