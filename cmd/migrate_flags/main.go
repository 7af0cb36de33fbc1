// Command migrate_flags copies persisted visitor flags from the local sqlite
// file into PostgreSQL.
package main

import (
	"log"

	"ayudame-ya/internal/config"
	"ayudame-ya/internal/database"
	"ayudame-ya/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	src, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open source", zap.Error(err))
	}
	logger.Info("connected to sqlite", zap.String("path", cfg.DBPath))

	dstCfg := *cfg
	dstCfg.DBDriver = "postgres"
	dst, err := database.Open(&dstCfg, logger)
	if err != nil {
		logger.Fatal("failed to open destination", zap.Error(err))
	}

	n, err := database.CopyFlags(src, dst)
	if err != nil {
		logger.Fatal("failed to copy flags", zap.Error(err))
	}
	logger.Info("copied flags", zap.Int("rows", n))

	if err := database.SyncSequences(dst); err != nil {
		logger.Fatal("failed to sync sequences", zap.Error(err))
	}
	logger.Info("migration completed")
}
