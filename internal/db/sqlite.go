package db

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(dsn string, gcfg *gorm.Config, log *zap.Logger) (*DB, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one connection keeps writes serialized.
	sqlDB.SetMaxOpenConns(1)

	log.Info("sqlite database opened", zap.String("dsn", dsn))
	return &DB{Gorm: gdb}, nil
}
