package db

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "github.com/kevin-vien/web-mobile-tranning/configs"
	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
)

// Store owns the single *gorm.DB of the process and tracks whether the schema
// is usable. It is built once at startup and passed to every repository.
type Store struct {
	DB    *gorm.DB
	ready atomic.Bool
}

func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone,
	)
}

// Open returns a handle without touching the network; Bootstrap does that.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(DSN(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableAutomaticPing: true,
		TranslateError:       true,
		Logger:               logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite has no row locks; a single connection serializes writers instead.
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &Store{DB: gdb}, nil
}

// NewStore wraps an existing connection, e.g. a test database.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{DB: gdb}
}

func (s *Store) Ready() bool {
	return s.ready.Load()
}

func (s *Store) MarkReady() {
	s.ready.Store(true)
}

// Bootstrap pings the database and migrates the schema. The store is ready
// only when both succeed.
func (s *Store) Bootstrap(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := Migrate(s.DB.WithContext(ctx)); err != nil {
		return err
	}

	s.MarkReady()
	return nil
}

// Run retries Bootstrap until it succeeds or ctx is done. Writes are refused
// by the HTTP layer while the store is not ready.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	for attempt := 1; ; attempt++ {
		err := s.Bootstrap(ctx)
		if err == nil {
			logging.Log(logging.Fields{Step: "storage_bootstrap", Status: "ready", Attempt: attempt})
			return
		}
		logging.Err(logging.Fields{Step: "storage_bootstrap", Status: "retry", Attempt: attempt}, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(every):
		}
	}
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
