package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rDingyFourFour/handybob-sub000/internal/config"
	"github.com/rDingyFourFour/handybob-sub000/internal/db"
	"github.com/rDingyFourFour/handybob-sub000/internal/logging"
)

// seedFiles run in order so foreign keys resolve.
var seedFiles = []string{
	"customers.sql",
	"jobs.sql",
	"quotes.sql",
	"calls.sql",
	"invoices.sql",
	"messages.sql",
}

func main() {
	dir := flag.String("dir", "seed", "directory holding the seed SQL files")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Println("failed to read .env:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	conn, err := db.Open(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	if err := db.Migrate(conn, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	for _, name := range seedFiles {
		file := filepath.Join(*dir, name)
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Fatal("failed to read seed file", zap.String("file", file), zap.Error(err))
		}
		if _, err := conn.Exec(string(content)); err != nil {
			logger.Fatal("failed to execute seed file", zap.String("file", file), zap.Error(err))
		}
		logger.Info("seeded", zap.String("file", file))
	}

	fmt.Println("Database seeding completed successfully!")
}
