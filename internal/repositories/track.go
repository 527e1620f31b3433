package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// TrackRepository persists catalog-verified tracks keyed by provider and a
// normalized "artist|title" lookup key. Rows are a record of what the catalog
// confirmed, for inspection and export; verification always queries the
// catalog directly.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a verified track under its lookup key.
// Returns the UNIQUE constraint error unchanged on duplicate keys.
func (r *TrackRepository) Create(provider, lookupKey string, track models.Track) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if track.ID == "" {
		return fmt.Errorf("recorded track requires a catalog id")
	}

	now := time.Now()

	query := `
		INSERT INTO tracks (id, sequence, provider, lookup_key, track_id, artist, title, album, version, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(),
		sequence,
		provider,
		lookupKey,
		track.ID,
		track.Artist,
		track.Title,
		track.Album,
		track.Version,
		track.DurationMS,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verified track: %w", err)
	}

	return nil
}

// Record inserts a verified track, treating an already-recorded key as
// success. Implements the pipeline engine's TrackRecorder.
func (r *TrackRepository) Record(provider, lookupKey string, track models.Track) error {
	err := r.Create(provider, lookupKey, track)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to record track: %w", err)
	}

	return nil
}

// Get retrieves a recorded track by provider and lookup key, excluding soft-deleted rows
func (r *TrackRepository) Get(provider, lookupKey string) (*models.Track, error) {
	query := `
		SELECT track_id, artist, title, album, version, duration_ms
		FROM tracks
		WHERE provider = ? AND lookup_key = ? AND deleted_at IS NULL
	`

	var track models.Track
	err := r.db.QueryRow(query, provider, lookupKey).Scan(
		&track.ID, &track.Artist, &track.Title, &track.Album, &track.Version, &track.DurationMS,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: verified track", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan verified track: %w", err)
	}

	return &track, nil
}

// Delete soft-deletes a recorded track by provider and lookup key
func (r *TrackRepository) Delete(provider, lookupKey string) error {
	now := time.Now()

	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE provider = ? AND lookup_key = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, provider, lookupKey)
	if err != nil {
		return fmt.Errorf("failed to delete verified track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: verified track", shared.ErrNotFound)
	}

	return nil
}
