package service

import (
	"context"
	"strconv"
	"time"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"
	"clicker_game/internal/repository"
)

// AdminService provides admin statistics and operations
type AdminService struct {
	admin   repository.AdminStore
	players repository.Store
	users   repository.UserStore
	game    *GameService
	clock   clock.Clock
	loc     *time.Location
}

func NewAdminService(admin repository.AdminStore, players repository.Store, users repository.UserStore, game *GameService, clk clock.Clock, loc *time.Location) *AdminService {
	if clk == nil {
		clk = clock.Real{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AdminService{admin: admin, players: players, users: users, game: game, clock: clk, loc: loc}
}

// GetStats returns economy statistics for the current game day and week.
func (s *AdminService) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	now := s.clock.Now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	weekStart := dayStart.AddDate(0, 0, -6)
	return s.admin.Stats(ctx, dayStart, weekStart)
}

// GetPlayer returns user and player by @username, tg id or user id.
// The player is shown as stored, without regen.
func (s *AdminService) GetPlayer(ctx context.Context, identifier string) (*domain.PlayerInfo, error) {
	userID, err := s.admin.ResolveUserID(ctx, identifier)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.players.PlayerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.PlayerInfo{User: u, Player: p}, nil
}

func (s *AdminService) TopPlayers(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	return s.players.TopPlayers(ctx, limit)
}

// AddCoins credits (or debits, for negative amounts) a player's balance.
func (s *AdminService) AddCoins(ctx context.Context, identifier string, amount int64, adminTgID int64) (*domain.Player, error) {
	userID, err := s.admin.ResolveUserID(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.game.GrantCoins(ctx, userID, amount, "admin:"+strconv.FormatInt(adminTgID, 10))
}

// RecentActions returns the newest audit entries of a player.
func (s *AdminService) RecentActions(ctx context.Context, identifier string, limit int) ([]*domain.AuditLog, error) {
	userID, err := s.admin.ResolveUserID(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.admin.RecentAudit(ctx, userID, limit)
}

// TelegramIDs lists every user reachable by the bot.
func (s *AdminService) TelegramIDs(ctx context.Context) ([]int64, error) {
	return s.admin.TelegramIDs(ctx)
}
