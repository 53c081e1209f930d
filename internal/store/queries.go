package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Observation operations

// PutObservation inserts or replaces the cached remote observation for an
// environment.
func (s *Store) PutObservation(obs *Observation) error {
	query := `
		INSERT OR REPLACE INTO remote_observations
		(env, remote_path, size_bytes, modified_at, observed_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		obs.Env,
		obs.RemotePath,
		obs.SizeBytes,
		obs.ModifiedAt.UTC().Format(time.RFC3339Nano),
		obs.ObservedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record observation for %s: %w", obs.Env, err)
	}
	return nil
}

// GetObservation retrieves the cached observation for an environment.
// Returns (nil, nil) when the environment has never been observed.
func (s *Store) GetObservation(env string) (*Observation, error) {
	query := `
		SELECT env, remote_path, size_bytes, modified_at, observed_at
		FROM remote_observations
		WHERE env = ?
	`
	var obs Observation
	var modifiedAt, observedAt string
	err := s.db.QueryRow(query, env).Scan(
		&obs.Env, &obs.RemotePath, &obs.SizeBytes, &modifiedAt, &observedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation for %s: %w", env, err)
	}
	if obs.ModifiedAt, err = time.Parse(time.RFC3339Nano, modifiedAt); err != nil {
		return nil, fmt.Errorf("failed to parse modified_at for %s: %w", env, err)
	}
	if obs.ObservedAt, err = time.Parse(time.RFC3339Nano, observedAt); err != nil {
		return nil, fmt.Errorf("failed to parse observed_at for %s: %w", env, err)
	}
	return &obs, nil
}

// DeleteObservation drops the cached observation, e.g. when an
// environment is removed or rebound to a new remote.
func (s *Store) DeleteObservation(env string) error {
	if _, err := s.db.Exec(`DELETE FROM remote_observations WHERE env = ?`, env); err != nil {
		return fmt.Errorf("failed to delete observation for %s: %w", env, err)
	}
	return nil
}

// Sync journal operations

// RecordSyncEvent appends a sync event to the journal.
func (s *Store) RecordSyncEvent(env, kind, detail string) error {
	query := `
		INSERT INTO sync_events (id, env, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		uuid.NewString(), env, kind, detail,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s event for %s: %w", kind, env, err)
	}
	return nil
}

// ListSyncEvents returns the newest events for an environment, newest
// first.
func (s *Store) ListSyncEvents(env string, limit int) ([]*SyncEvent, error) {
	query := `
		SELECT id, env, kind, detail, created_at
		FROM sync_events
		WHERE env = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, env, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync events for %s: %w", env, err)
	}
	defer rows.Close()

	var events []*SyncEvent
	for rows.Next() {
		var ev SyncEvent
		var createdAt string
		if err := rows.Scan(&ev.ID, &ev.Env, &ev.Kind, &ev.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync event: %w", err)
		}
		if ev.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
