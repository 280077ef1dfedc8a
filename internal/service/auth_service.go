package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"clicker_game/internal/clock"
	"clicker_game/internal/domain"
	"clicker_game/internal/repository"
	"clicker_game/internal/telegram"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues tokens for email/password and Telegram identities.
// Every successful login guarantees the user has a player.
type AuthService struct {
	users    repository.UserStore
	tokens   *TokenService
	refresh  RefreshStore
	audit    *AuditService
	clock    clock.Clock
	botToken string
	logger   *zap.Logger
}

type AuthConfig struct {
	BotToken string
	Refresh  RefreshStore
	Audit    *AuditService
	Logger   *zap.Logger
}

func NewAuthService(users repository.UserStore, tokens *TokenService, clk clock.Clock, cfg AuthConfig) *AuthService {
	if clk == nil {
		clk = clock.Real{}
	}
	refresh := cfg.Refresh
	if refresh == nil {
		refresh = StatelessRefreshStore{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		refresh:  refresh,
		audit:    cfg.Audit,
		clock:    clk,
		botToken: cfg.BotToken,
		logger:   log.Named("auth"),
	}
}

// TelegramEnabled reports whether a bot token is configured.
func (s *AuthService) TelegramEnabled() bool {
	return s.botToken != ""
}

func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	email = normalizeEmail(email)
	u := &domain.User{
		Email:        &email,
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
	}
	if _, err := s.users.CreateWithPlayer(ctx, u, s.clock.Now()); err != nil {
		authEventsTotal.WithLabelValues(domain.AuditActionRegister, "fail").Inc()
		return nil, err
	}

	s.audit.Log(ctx, u.ID, domain.AuditActionRegister, domain.AuditCategoryAuth, nil)
	return s.issue(ctx, u, domain.AuditActionRegister)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			authEventsTotal.WithLabelValues(domain.AuditActionLogin, "fail").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		authEventsTotal.WithLabelValues(domain.AuditActionLogin, "fail").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.users.EnsurePlayer(ctx, u, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("ensure player: %w", err)
	}
	s.audit.Log(ctx, u.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, nil)
	return s.issue(ctx, u, domain.AuditActionLogin)
}

// TelegramLogin validates WebApp init data and logs the Telegram user in,
// creating the account on first sight.
func (s *AuthService) TelegramLogin(ctx context.Context, initData string) (*domain.AuthResult, error) {
	if !s.TelegramEnabled() {
		return nil, domain.ErrInvalidCredentials
	}
	tgUser, err := telegram.ValidateInitData(initData, s.botToken, s.clock.Now())
	if err != nil {
		authEventsTotal.WithLabelValues(domain.AuditActionTelegramLogin, "fail").Inc()
		s.logger.Debug("telegram init data rejected", zap.Error(err))
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.findOrCreateTelegramUser(ctx, tgUser)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, u.ID, domain.AuditActionTelegramLogin, domain.AuditCategoryAuth, map[string]interface{}{"tg_id": tgUser.ID})
	return s.issue(ctx, u, domain.AuditActionTelegramLogin)
}

func (s *AuthService) findOrCreateTelegramUser(ctx context.Context, tg *telegram.WebAppUser) (*domain.User, error) {
	now := s.clock.Now()
	u, err := s.users.GetByTgID(ctx, tg.ID)
	if err == nil {
		if _, err := s.users.EnsurePlayer(ctx, u, now); err != nil {
			return nil, fmt.Errorf("ensure player: %w", err)
		}
		return u, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	username := tg.Username
	if username == "" {
		username = "tg_" + strconv.FormatInt(tg.ID, 10)
	}
	tgID := tg.ID
	u = &domain.User{Username: username, TgID: &tgID, FirstName: tg.FirstName}
	if _, err := s.users.CreateWithPlayer(ctx, u, now); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// параллельный вход того же пользователя
			return s.users.GetByTgID(ctx, tg.ID)
		}
		return nil, err
	}
	return u, nil
}

// Refresh rotates a refresh token: the old one is consumed, a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	userID, jti, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Consume(ctx, jti, userID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(ctx, u, domain.AuditActionRefresh)
}

// Logout revokes the refresh token. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	userID, jti, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.refresh.Revoke(ctx, jti); err != nil {
		return err
	}
	s.audit.Log(ctx, userID, domain.AuditActionLogout, domain.AuditCategoryAuth, nil)
	authEventsTotal.WithLabelValues(domain.AuditActionLogout, "ok").Inc()
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, u *domain.User, action string) (*domain.AuthResult, error) {
	pair, err := s.tokens.GeneratePair(u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Save(ctx, pair.RefreshID, u.ID, s.tokens.RefreshTTL()); err != nil {
		return nil, err
	}
	authEventsTotal.WithLabelValues(action, "ok").Inc()
	return &domain.AuthResult{
		User:         u,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
