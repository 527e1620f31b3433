package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// BuildRepository implements models.Repository[*models.BuildRecord] for build auditing.
//
// Handles build record CRUD with soft delete support and status-based queries.
type BuildRepository struct {
	db *sql.DB
}

// NewBuildRepository creates a new BuildRepository with the given database connection
func NewBuildRepository(db *sql.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

// Create inserts a new build record into the database with generated ID and sequence
func (r *BuildRepository) Create(build *models.BuildRecord) error {
	sequence, err := NextSequence(r.db, "builds")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	build.SetID(id)

	if err := build.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO builds (
			id, sequence, playlist_id, owner_id, provider, provider_id,
			status, error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		build.PlaylistID(),
		build.OwnerID(),
		build.Provider(),
		nullable(build.ProviderID()),
		string(build.Status()),
		nullable(build.ErrorMessage()),
		build.StartedAt(),
		build.CompletedAt(),
		build.CreatedAt(),
		build.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert build record: %w", err)
	}

	return nil
}

// Get retrieves a build record by ID, excluding soft-deleted records
func (r *BuildRepository) Get(id string) (*models.BuildRecord, error) {
	query := `
		SELECT id, sequence, playlist_id, owner_id, provider, provider_id,
			status, error_message, started_at, completed_at, created_at, updated_at, deleted_at
		FROM builds
		WHERE id = ? AND deleted_at IS NULL
	`

	return scanBuild(r.db.QueryRow(query, id))
}

// Update modifies an existing build record in the database
func (r *BuildRepository) Update(build *models.BuildRecord) error {
	if err := build.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	build.SetUpdatedAt(now)

	query := `
		UPDATE builds
		SET provider_id = ?, status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullable(build.ProviderID()),
		string(build.Status()),
		nullable(build.ErrorMessage()),
		build.CompletedAt(),
		now,
		build.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update build record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: build record %s", shared.ErrNotFound, build.ID())
	}

	return nil
}

// Delete soft-deletes a build record by ID
func (r *BuildRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE builds
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete build record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: build record %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all build records matching the given criteria, excluding soft-deleted records.
// Results are newest first so the latest attempt per playlist surfaces early.
func (r *BuildRepository) List(criteria map[string]any) ([]*models.BuildRecord, error) {
	query := `
		SELECT id, sequence, playlist_id, owner_id, provider, provider_id,
			status, error_message, started_at, completed_at, created_at, updated_at, deleted_at
		FROM builds
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query build records: %w", err)
	}
	defer rows.Close()

	var builds []*models.BuildRecord
	for rows.Next() {
		build, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, build)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return builds, nil
}

// scanBuild scans a row into a [models.BuildRecord]
func scanBuild(row scanner) (*models.BuildRecord, error) {
	var (
		id           string
		sequence     int
		playlistID   string
		ownerID      string
		provider     string
		providerID   sql.NullString
		status       string
		errorMessage sql.NullString
		startedAt    time.Time
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &playlistID, &ownerID, &provider, &providerID,
		&status, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: build record", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan build record: %w", err)
	}

	build := models.NewBuildRecord(sequence, playlistID, ownerID, provider)
	build.SetID(id)
	build.SetStatus(models.BuildStatus(status))
	build.SetStartedAt(startedAt)
	build.SetCreatedAt(createdAt)
	build.SetUpdatedAt(updatedAt)

	if providerID.Valid {
		build.SetProviderID(providerID.String)
	}
	if errorMessage.Valid {
		build.SetErrorMessage(errorMessage.String)
	}
	if completedAt.Valid {
		build.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		build.SetDeletedAt(&deletedAt.Time)
	}

	return build, nil
}
