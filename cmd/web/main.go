package main

import (
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/Ahmedchetoui/Delta-sub000/internal/config"
	apphttp "github.com/Ahmedchetoui/Delta-sub000/internal/http"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()
	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	r := apphttp.NewRouter(logger, db, cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
