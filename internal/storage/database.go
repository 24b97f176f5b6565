// Package storage persists cards, scheduling state, review logs and users
// in SQLite. Repositories run against sqlx.ExtContext so the same code
// serves both the plain connection and an open transaction; DB.Run is the
// transactional unit of work the study service composes its operations in.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/easysks/easysks/internal/study"
)

// DB wraps the SQLite connection pool.
type DB struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn and applies the schema.
func Open(dsn string) (*DB, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent transactions.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Stores returns the repository set bound to the plain connection, outside
// any transaction.
func (d *DB) Stores() study.Stores {
	return storesOn(d.db)
}

// Users returns the user repository bound to the plain connection.
func (d *DB) Users() *UserRepository {
	return &UserRepository{ext: d.db}
}

// Run implements study.UnitOfWork: fn's writes commit together or not at
// all.
func (d *DB) Run(ctx context.Context, fn func(ctx context.Context, s study.Stores) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, storesOn(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func storesOn(ext sqlx.ExtContext) study.Stores {
	return study.Stores{
		Cards:      &CardRepository{ext: ext},
		Scheduling: &SchedulingRepository{ext: ext},
		ReviewLogs: &ReviewLogRepository{ext: ext},
	}
}
