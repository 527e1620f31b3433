package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.Playlist].
//
// Handles playlist CRUD with soft delete support, ordered track storage, and
// the draft to transmitted lifecycle transition.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist and its tracks with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (id, sequence, owner_id, name, description, public, status, provider, provider_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		playlist.OwnerID(),
		playlist.Name(),
		playlist.Description(),
		playlist.Public(),
		string(playlist.Status()),
		nullable(playlist.Provider()),
		nullable(playlist.ProviderID()),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	if err := insertTracks(tx, id, playlist.Tracks()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID with its tracks, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := `
		SELECT id, sequence, owner_id, name, description, public, status, provider, provider_id, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	tracks, err := r.loadTracks(id)
	if err != nil {
		return nil, err
	}
	playlist.SetTracks(tracks)

	return playlist, nil
}

// Update rewrites a draft playlist's editable fields and track listing.
// Transmitted playlists are immutable; updating one returns [shared.ErrInvalidState].
func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	// The stored status decides editability before the payload is judged: a
	// transmitted playlist is immutable regardless of what the update carries.
	var status string
	switch err := r.db.QueryRow("SELECT status FROM playlists WHERE id = ? AND deleted_at IS NULL", playlist.ID()).Scan(&status); {
	case err == sql.ErrNoRows:
		return fmt.Errorf("%w: playlist %s", shared.ErrNotFound, playlist.ID())
	case err != nil:
		return fmt.Errorf("failed to inspect playlist: %w", err)
	case status != string(models.StatusDraft):
		return fmt.Errorf("%w: playlist %s is %s", shared.ErrInvalidState, playlist.ID(), status)
	}

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE playlists
		SET name = ?, description = ?, public = ?, updated_at = ?
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	result, err := tx.Exec(query,
		playlist.Name(),
		playlist.Description(),
		playlist.Public(),
		now,
		playlist.ID(),
		string(models.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return r.explainMissedUpdate(playlist.ID())
	}

	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", playlist.ID()); err != nil {
		return fmt.Errorf("failed to clear playlist tracks: %w", err)
	}
	if err := insertTracks(tx, playlist.ID(), playlist.Tracks()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist update: %w", err)
	}

	return nil
}

// MarkTransmitted transitions a draft playlist to transmitted, recording the
// provider and its playlist id. The transition is compare-and-swap: it only
// succeeds if the playlist is still a draft without a provider id, so two
// concurrent builds cannot both claim the transition.
func (r *PlaylistRepository) MarkTransmitted(id, provider, providerID string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET status = ?, provider = ?, provider_id = ?, updated_at = ?
		WHERE id = ? AND status = ? AND provider_id IS NULL AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(models.StatusTransmitted),
		provider,
		providerID,
		now,
		id,
		string(models.StatusDraft),
	)
	if err != nil {
		return fmt.Errorf("failed to mark playlist transmitted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return r.explainMissedUpdate(id)
	}

	return nil
}

// Delete soft-deletes a draft playlist by ID.
// Transmitted playlists stay on record; deleting one returns [shared.ErrInvalidState].
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id, string(models.StatusDraft))
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return r.explainMissedUpdate(id)
	}

	return nil
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.Playlist, error) {
	query := `
		SELECT id, sequence, owner_id, name, description, public, status, provider, provider_id, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, playlist := range playlists {
		tracks, err := r.loadTracks(playlist.ID())
		if err != nil {
			return nil, err
		}
		playlist.SetTracks(tracks)
	}

	return playlists, nil
}

// ListByOwner retrieves all playlists for one owner in sequence order.
func (r *PlaylistRepository) ListByOwner(ownerID string) ([]*models.Playlist, error) {
	return r.List(map[string]any{"owner_id": ownerID})
}

// explainMissedUpdate distinguishes a missing playlist from a lifecycle
// conflict after an UPDATE touched zero rows.
func (r *PlaylistRepository) explainMissedUpdate(id string) error {
	var status string
	err := r.db.QueryRow("SELECT status FROM playlists WHERE id = ? AND deleted_at IS NULL", id).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect playlist: %w", err)
	}
	return fmt.Errorf("%w: playlist %s is %s", shared.ErrInvalidState, id, status)
}

// loadTracks returns a playlist's tracks in position order.
func (r *PlaylistRepository) loadTracks(playlistID string) ([]models.Track, error) {
	query := `
		SELECT track_id, artist, title, album, version, duration_ms
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var track models.Track
		if err := rows.Scan(&track.ID, &track.Artist, &track.Title, &track.Album, &track.Version, &track.DurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// insertTracks writes a playlist's track listing with stable positions.
func insertTracks(tx *sql.Tx, playlistID string, tracks []models.Track) error {
	query := `
		INSERT INTO playlist_tracks (id, playlist_id, position, track_id, artist, title, album, version, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for position, track := range tracks {
		_, err := tx.Exec(query,
			shared.GenerateID(),
			playlistID,
			position,
			track.ID,
			track.Artist,
			track.Title,
			track.Album,
			track.Version,
			track.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("failed to insert playlist track: %w", err)
		}
	}

	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanPlaylist scans a playlist row without its tracks.
func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		id          string
		sequence    int
		ownerID     string
		name        string
		description string
		public      bool
		status      string
		provider    sql.NullString
		providerID  sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &ownerID, &name, &description, &public, &status, &provider, &providerID, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: playlist", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	payload := models.PlaylistPayload{
		Name:        name,
		Description: description,
		Public:      public,
	}

	playlist := models.NewPlaylist(sequence, ownerID, payload)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if models.PlaylistStatus(status) == models.StatusTransmitted {
		playlist.SetTransmitted(provider.String, providerID.String)
	}
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}

// nullable maps empty strings to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
