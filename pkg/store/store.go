// Package store persists report snapshots in a local SQLite database
// behind two typed repositories. The schema is created asynchronously on
// first open; repository access is gated on that finishing.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogGorm "github.com/orandin/slog-gorm"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("store")

// ErrNotReady is returned when repository access is attempted after store
// initialization failed.
var ErrNotReady = errors.New("store is not ready")

// Store owns the database handle and the initialization lifecycle. All
// access funnels through the repositories returned by Collections and
// Features; sqlite's own locking is the only serialization point.
type Store struct {
	logger *slog.Logger

	db      *gorm.DB
	ready   chan struct{}
	initErr error
}

// Open creates the store and kicks off schema creation in the background.
// The returned store is not usable until Ready is closed; repository
// methods wait for that themselves.
func Open(path string, logger *slog.Logger) *Store {
	s := &Store{
		logger: logger.With("component", "store"),
		ready:  make(chan struct{}),
	}

	go s.init(path)

	return s
}

func (s *Store) init(path string) {
	defer close(s.ready)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: slogGorm.New(),
	})
	if err != nil {
		s.initErr = fmt.Errorf("failed to open database: %w", err)
		return
	}

	// Set pragmas for performance
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=normal;")

	if err := migrate(db); err != nil {
		s.initErr = fmt.Errorf("failed to migrate database: %w", err)
		return
	}

	s.db = db
	s.logger.Info("store ready", "path", path)
}

// Ready is closed once schema creation has finished, successfully or not.
// Check Err after it closes.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Err reports the initialization error, if any. Only meaningful after
// Ready has closed.
func (s *Store) Err() error {
	return s.initErr
}

// WaitReady blocks until the store is ready or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ready:
		if s.initErr != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, s.initErr)
		}
		return nil
	}
}

// Collections returns the collection repository.
func (s *Store) Collections() *Collections {
	return &Collections{store: s}
}

// Features returns the feature repository.
func (s *Store) Features() *Features {
	return &Features{store: s}
}
