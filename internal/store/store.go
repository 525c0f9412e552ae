// Package store owns the Postgres connection pool shared by the repositories.
package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-ratings/internal/config"
)

// Options controls connection-pool behaviour.
type Options struct {
	MaxConns               int32
	MinConns               int32
	MaxConnIdleTime        time.Duration
	MaxConnLifetime        time.Duration
	ConnTimeout            time.Duration
	StatementCacheCapacity int
	Logger                 *log.Logger
}

// OptionsFromConfig maps the DB_* settings onto pool options.
func OptionsFromConfig(cfg config.Config, logger *log.Logger) Options {
	return Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}
}

// Store wraps the pgx pool so callers never manage connections directly.
type Store struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	opts   Options
}

// New opens a pool and pings the database before returning.
func New(ctx context.Context, dbURL string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("store: opening pool (max=%d, min=%d, idle=%s, life=%s, stmt_cache=%d)",
		opts.MaxConns, opts.MinConns, opts.MaxConnIdleTime, opts.MaxConnLifetime, opts.StatementCacheCapacity)

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.StatementCacheCapacity > 0 {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
		cfg.ConnConfig.StatementCacheCapacity = opts.StatementCacheCapacity
	}

	connCtx, cancel := withTimeout(ctx, opts.ConnTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Println("store: database connection established")
	return &Store{pool: pool, logger: logger, opts: opts}, nil
}

// Migrate applies every *.up.sql file in dir in lexical order. The schema uses
// IF NOT EXISTS throughout, so re-running is harmless.
func (s *Store) Migrate(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*_*.up.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(files)
	for _, path := range files {
		payload, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", path, err)
		}
		if _, err := s.pool.Exec(ctx, string(payload)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
		s.logger.Printf("store: applied %s", filepath.Base(path))
	}
	return nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.logger.Println("store: closing connection pool")
	s.pool.Close()
}

// HealthCheck verifies the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("store not initialized")
	}
	checkCtx, cancel := withTimeout(ctx, s.opts.ConnTimeout)
	defer cancel()
	return s.pool.Ping(checkCtx)
}

// Pool exposes the underlying pgx pool for repositories.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
