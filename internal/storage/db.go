// Package storage keeps a run ledger in sqlite: one record per pipeline run
// and one per section, so a failed batch can be diagnosed after the fact.
// The ledger is observational only; pipeline decisions never read it back.
package storage

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"slidecast/log"
)

var DB *gorm.DB

const dbFileName = "runs.db"

// Swappable for tests.
var dbPathResolver = func(videoDir string) (string, error) {
	return filepath.Join(videoDir, dbFileName), nil
}

func InitDB(videoDir string) {
	dbPath, err := dbPathResolver(videoDir)
	if err != nil {
		log.GetLogger().Fatal("failed to resolve database path", zap.Error(err))
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.GetLogger().Fatal("failed to create database directory", zap.String("dir", dir), zap.Error(err))
	}

	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.GetLogger().Fatal("failed to connect database", zap.Error(err))
	}

	if err = DB.AutoMigrate(&RunRecord{}, &SectionRecord{}); err != nil {
		log.GetLogger().Fatal("failed to migrate database", zap.Error(err))
	}

	log.GetLogger().Info("Run ledger initialized", zap.String("path", dbPath))
}
