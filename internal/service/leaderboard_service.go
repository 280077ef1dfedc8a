package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clicker_game/internal/domain"
	"clicker_game/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leaderboardKeyPrefix = "leaderboard:top:"

// LeaderboardService serves top players by balance, cached in Redis for ttl.
// Without Redis every call hits the store.
type LeaderboardService struct {
	store  repository.Store
	rdb    *redis.Client
	size   int
	ttl    time.Duration
	logger *zap.Logger
}

func NewLeaderboardService(store repository.Store, rdb *redis.Client, size int, ttl time.Duration, logger *zap.Logger) *LeaderboardService {
	if size <= 0 {
		size = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{store: store, rdb: rdb, size: size, ttl: ttl, logger: logger.Named("leaderboard")}
}

func (s *LeaderboardService) key() string {
	return fmt.Sprintf("%s%d", leaderboardKeyPrefix, s.size)
}

// Top returns up to size entries ordered by balance, rank starting at 1.
func (s *LeaderboardService) Top(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, s.key()).Bytes()
		switch {
		case err == nil:
			var cached []*domain.LeaderboardEntry
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("leaderboard cache corrupt, rebuilding")
		case !errors.Is(err, redis.Nil):
			// Redis недоступен: читаем из базы
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	entries, err := s.store.TopPlayers(ctx, s.size)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.LeaderboardEntry{}
	}

	if s.rdb != nil && s.ttl > 0 {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, s.key(), raw, s.ttl).Err(); err != nil {
				s.logger.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}
