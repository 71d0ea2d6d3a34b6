package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cardeals/internal/config"
	"cardeals/internal/database"
	"cardeals/internal/logging"
	"cardeals/internal/server"
)

const indexPage = "docs/index.html"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", false).Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, false)

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Error connecting to db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		log.Fatalf("Error migrating db: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.New(db, indexPage, log).ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
