package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"clicker_game/internal/db"
	"clicker_game/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up | down | version")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Open(ctx, dsn)
	cancel()
	if err != nil {
		logger.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := db.NewMigrator(pool)
	switch *cmd {
	case "up":
		if err := m.Up(); err != nil {
			logger.Fatal("migrate up failed", "error", err)
		}
	case "down":
		if err := m.Down(); err != nil {
			logger.Fatal("migrate down failed", "error", err)
		}
	case "version":
	default:
		logger.Fatal("unknown command", "cmd", *cmd)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Fatal("read version failed", "error", err)
	}
	fmt.Printf("schema version=%d dirty=%v\n", version, dirty)
}
