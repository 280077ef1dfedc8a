package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"clicker_game/internal/config"
	"clicker_game/internal/db"
	"clicker_game/internal/domain"
	"clicker_game/internal/logger"
	"clicker_game/internal/repository"
	"clicker_game/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// Creates (or reuses) a user with a player and prints an access token.
func main() {
	email := flag.String("email", "test@example.com", "user email")
	username := flag.String("username", "testuser", "username")
	password := flag.String("password", "testpass123", "password")
	flag.Parse()

	cfg := config.Load()
	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()
	now := time.Now()

	u, err := repo.GetByEmail(ctx, *email)
	switch {
	case err == nil:
		logger.Info("user already exists", "id", u.ID)
		if _, err := repo.EnsurePlayer(ctx, u, now); err != nil {
			logger.Fatal("ensure player failed", "error", err)
		}
	case errors.Is(err, domain.ErrUserNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("hash password failed", "error", err)
		}
		u = &domain.User{Email: email, Username: *username, PasswordHash: string(hash)}
		p, err := repo.CreateWithPlayer(ctx, u, now)
		if err != nil {
			logger.Fatal("create user failed", "error", err)
		}
		logger.Info("user created", "id", u.ID, "player_id", p.ID)
	default:
		logger.Fatal("lookup user failed", "error", err)
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, nil)
	token, err := tokens.GenerateAccess(u.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Printf("user_id=%d\ntoken=%s\n", u.ID, token)
}
