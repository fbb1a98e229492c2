// Package storage keeps the device-local copy of the group state in SQLite.
// The cache is what the app reads on startup and what survives offline runs;
// the cloud document is reconciled against it when connectivity returns.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chittrack/internal/core"

	_ "modernc.org/sqlite"
)

// Slot keys. Each slot holds one JSON value.
const (
	slotSnapshot  = "snapshot"
	slotAuthState = "auth_state"
	slotLastPush  = "last_push"
)

type Cache struct {
	db *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// LoadSnapshot returns the cached group state, or (nil, nil) when the cache
// is empty.
func (c *Cache) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	var snap core.Snapshot
	found, err := c.loadJSON(ctx, slotSnapshot, &snap)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	snap = snap.Normalized()
	return &snap, nil
}

func (c *Cache) StoreSnapshot(ctx context.Context, snap core.Snapshot) error {
	return c.storeJSON(ctx, slotSnapshot, snap.Normalized())
}

// AuthState remembers who was logged in on this device across restarts.
type AuthState struct {
	Role  string `json:"role"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

func (c *Cache) LoadAuthState(ctx context.Context) (*AuthState, error) {
	var state AuthState
	found, err := c.loadJSON(ctx, slotAuthState, &state)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &state, nil
}

func (c *Cache) StoreAuthState(ctx context.Context, state AuthState) error {
	return c.storeJSON(ctx, slotAuthState, state)
}

func (c *Cache) ClearAuthState(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, slotAuthState)
	if err != nil {
		return fmt.Errorf("clear auth state: %w", err)
	}
	return nil
}

// MarkPushed records when the snapshot last reached the cloud.
func (c *Cache) MarkPushed(ctx context.Context, at time.Time) error {
	return c.storeJSON(ctx, slotLastPush, at.UTC().Format(time.RFC3339))
}

// LastPush returns the time of the last successful cloud push, or the zero
// time when nothing has been pushed yet.
func (c *Cache) LastPush(ctx context.Context) (time.Time, error) {
	var stamp string
	found, err := c.loadJSON(ctx, slotLastPush, &stamp)
	if err != nil || !found {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last push: %w", err)
	}
	return at, nil
}

func (c *Cache) loadJSON(ctx context.Context, key string, out any) (bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load slot %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode slot %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) storeJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("store slot %s: %w", key, err)
	}
	return nil
}
