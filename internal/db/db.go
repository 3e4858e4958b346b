package db

import (
	"context"
	"fmt"
	"time"

	"github.com/book-catalog/backend/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	Gorm *gorm.DB
	pool *pgxpool.Pool
}

func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*DB, error) {
	gcfg := &gorm.Config{
		Logger: NewGormLogger(log, cfg.DatabaseLogSQL),
	}

	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return openSQLite(cfg.DatabaseDSN, gcfg, log)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DatabaseDSN, gcfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func (d *DB) Close() error {
	sqlDB, err := d.Gorm.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Debugf(format, args...)
}

// NewGormLogger routes gorm's SQL log into zap.
func NewGormLogger(log *zap.Logger, logSQL bool) logger.Interface {
	lvl := logger.Warn
	if logSQL {
		lvl = logger.Info
	}
	return logger.New(gormWriter{log: log.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
