package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"clicker_game/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RefreshStore tracks issued refresh tokens by jti so they can be rotated
// and revoked.
type RefreshStore interface {
	Save(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	// Consume deletes jti and fails with ErrInvalidToken unless it was
	// issued to userID and not yet used.
	Consume(ctx context.Context, jti string, userID int64) error
	Revoke(ctx context.Context, jti string) error
}

// StatelessRefreshStore accepts every signature-valid refresh token.
type StatelessRefreshStore struct{}

func (StatelessRefreshStore) Save(context.Context, string, int64, time.Duration) error { return nil }
func (StatelessRefreshStore) Consume(context.Context, string, int64) error             { return nil }
func (StatelessRefreshStore) Revoke(context.Context, string) error                     { return nil }

type RedisRefreshStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisRefreshStore(client *redis.Client, logger *zap.Logger) *RedisRefreshStore {
	return &RedisRefreshStore{client: client, logger: logger.Named("RefreshStore")}
}

func refreshKey(jti string) string {
	return "refresh_uuid:" + jti
}

func (s *RedisRefreshStore) Save(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKey(jti), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisRefreshStore) Consume(ctx context.Context, jti string, userID int64) error {
	val, err := s.client.GetDel(ctx, refreshKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("refresh token not found", zap.String("jti", jti))
		return domain.ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("consume refresh token: %w", err)
	}
	if val != strconv.FormatInt(userID, 10) {
		s.logger.Warn("refresh token owner mismatch", zap.String("jti", jti), zap.Int64("user_id", userID))
		return domain.ErrInvalidToken
	}
	return nil
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, jti string) error {
	if err := s.client.Del(ctx, refreshKey(jti)).Err(); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
