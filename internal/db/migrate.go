package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the tables of the given gorm records.
func RunMigrations(ctx context.Context, gdb *gorm.DB, log *zap.Logger, records ...any) error {
	if err := gdb.WithContext(ctx).AutoMigrate(records...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, r := range records {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(r); err == nil {
			log.Info("schema synchronized", zap.String("table", stmt.Schema.Table))
		}
	}
	return nil
}
