// Package sqlite provides a SQLite-backed leaderboard repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yrrving/plastsamlaren/internal/leaderboard"
	"github.com/yrrving/plastsamlaren/internal/leaderboard/sqlite/migrations"
	"github.com/yrrving/plastsamlaren/internal/sqlitemigrate"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists leaderboard entries in SQLite.
type Store struct {
	sqlDB *sql.DB

	mu         sync.RWMutex
	now        func() time.Time
	nameMaxLen int
}

var _ leaderboard.Repository = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite leaderboard store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now, nameMaxLen: leaderboard.DefaultNameMaxLen}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SetNow replaces the timestamp source.
func (s *Store) SetNow(fn func() time.Time) {
	s.mu.Lock()
	s.now = fn
	s.mu.Unlock()
}

// SetNameMaxLen changes the longest accepted name, in characters.
func (s *Store) SetNameMaxLen(n int) {
	s.mu.Lock()
	s.nameMaxLen = n
	s.mu.Unlock()
}

// Submit inserts one entry with a fresh id and the current time.
func (s *Store) Submit(ctx context.Context, sub leaderboard.Submission) (leaderboard.Entry, error) {
	if err := ctx.Err(); err != nil {
		return leaderboard.Entry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return leaderboard.Entry{}, fmt.Errorf("%w: storage is not configured", leaderboard.ErrUnavailable)
	}

	s.mu.RLock()
	now, maxLen := s.now, s.nameMaxLen
	s.mu.RUnlock()

	sub, err := sub.Normalize(maxLen)
	if err != nil {
		return leaderboard.Entry{}, err
	}
	e := leaderboard.Entry{
		ID:          uuid.New(),
		Name:        sub.Name,
		Score:       sub.Score,
		HelpedCount: sub.HelpedCount,
		CreatedAt:   fromMillis(toMillis(now())),
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO leaderboard_entries (id, name, score, helped_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(),
		e.Name,
		e.Score,
		e.HelpedCount,
		toMillis(e.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return leaderboard.Entry{}, fmt.Errorf("insert leaderboard entry: duplicate id %s", e.ID)
		}
		return leaderboard.Entry{}, fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return e, nil
}

// Top returns the best limit entries.
func (s *Store) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("%w: storage is not configured", leaderboard.ErrUnavailable)
	}
	limit = leaderboard.ClampLimit(limit, leaderboard.DefaultLimit, leaderboard.MaxLimit)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, score, helped_count, created_at
		 FROM leaderboard_entries
		 ORDER BY score DESC, created_at ASC, rowid ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]leaderboard.Entry, 0, limit)
	for rows.Next() {
		var (
			id        string
			e         leaderboard.Entry
			createdAt int64
		)
		if err := rows.Scan(&id, &e.Name, &e.Score, &e.HelpedCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse entry id %q: %w", id, err)
		}
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}
	return entries, nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return leaderboard.ErrUnavailable
	}
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return errors.Join(leaderboard.ErrUnavailable, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
