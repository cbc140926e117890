package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/persistence/db"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects a pgx pool and layers gorm on top of it. The pool is returned for health checks
// and must be closed by the caller.
func Open(ctx context.Context, dsn string, maxConns int32, log zerolog.Logger) (*pgxpool.Pool, *gorm.DB, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	level := gormlogger.Warn
	if log.GetLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}
	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), &gorm.Config{
		Logger: db.NewGormLogger(log, level, slowQueryThreshold),
	})
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("open gorm: %w", err)
	}
	return pool, gdb, nil
}
