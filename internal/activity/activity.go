// Package activity keeps the local recent-activity feed in SQLite.
//
// Entries are scoped to the backend they were recorded against, so pointing
// fxdash at another API URL shows that backend's history only.
package activity

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/migrations"
	"github.com/studiowebux/fxdash/internal/types"
)

// Kinds recorded by the CLI and TUI
const (
	KindLogin            = "login"
	KindLogout           = "logout"
	KindSessionExpired   = "session_expired"
	KindProviderCreate   = "provider_create"
	KindProviderUpdate   = "provider_update"
	KindProviderDelete   = "provider_delete"
	KindSubscriberDelete = "subscriber_delete"
)

// DefaultLimit is the number of entries shown on the home screen
const DefaultLimit = 10

// Store is the activity log for one backend
type Store struct {
	db     *sql.DB
	apiURL string
	now    func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// Open opens (creating if needed) the database at dbPath and migrates it
func Open(dbPath, apiURL string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create activity directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to activity database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		db:      db,
		apiURL:  apiURL,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry and returns it
func (s *Store) Record(ctx context.Context, kind, subject, detail string) (types.ActivityEntry, error) {
	now := s.now().UTC()

	s.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	s.mu.Unlock()
	if err != nil {
		return types.ActivityEntry{}, fmt.Errorf("failed to generate activity id: %w", err)
	}

	entry := types.ActivityEntry{
		ID:        id.String(),
		Timestamp: now.Format(time.RFC3339),
		Kind:      kind,
		Subject:   subject,
		Detail:    detail,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity (id, created_at, kind, subject, detail, api_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, now.Format(time.RFC3339Nano), entry.Kind, entry.Subject, entry.Detail, s.apiURL)
	if err != nil {
		return types.ActivityEntry{}, fmt.Errorf("failed to save activity entry: %w", err)
	}

	return entry, nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]types.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, kind, subject, detail
		FROM activity
		WHERE api_url = ?
		ORDER BY id DESC
		LIMIT ?
	`, s.apiURL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	defer rows.Close()

	var entries []types.ActivityEntry
	for rows.Next() {
		var (
			e         types.ActivityEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Kind, &e.Subject, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}

		e.Timestamp = createdAt
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.Timestamp = t.Format(time.RFC3339)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activity: %w", err)
	}

	return entries, nil
}

// Clear deletes this backend's entries and reports how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activity WHERE api_url = ?`, s.apiURL)
	if err != nil {
		return 0, fmt.Errorf("failed to clear activity: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// OpenDefault opens the store at config.DatabasePath
func OpenDefault(apiURL string) (*Store, error) {
	return Open(config.DatabasePath, apiURL)
}
