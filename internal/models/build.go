package models

import (
	"fmt"
	"time"
)

// BuildStatus is the outcome of a single build (publish) attempt.
type BuildStatus string

const (
	BuildPending   BuildStatus = "pending"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
	// BuildInconsistent marks the reportable case where the provider accepted
	// the playlist but recording the result locally failed. A retry could
	// create a duplicate remote playlist, so the attempt is flagged instead.
	BuildInconsistent BuildStatus = "inconsistent"
)

// BuildRecord is the audit trail for build attempts against a playlist.
type BuildRecord struct {
	id           string
	sequence     int
	playlistID   string
	ownerID      string
	provider     string
	providerID   string
	status       BuildStatus
	errorMessage string
	startedAt    time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewBuildRecord creates a pending build record for a playlist.
func NewBuildRecord(sequence int, playlistID, ownerID, provider string) *BuildRecord {
	now := time.Now()
	return &BuildRecord{
		sequence:   sequence,
		playlistID: playlistID,
		ownerID:    ownerID,
		provider:   provider,
		status:     BuildPending,
		startedAt:  now,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (b *BuildRecord) ID() string              { return b.id }
func (b *BuildRecord) Sequence() int           { return b.sequence }
func (b *BuildRecord) PlaylistID() string      { return b.playlistID }
func (b *BuildRecord) OwnerID() string         { return b.ownerID }
func (b *BuildRecord) Provider() string        { return b.provider }
func (b *BuildRecord) ProviderID() string      { return b.providerID }
func (b *BuildRecord) Status() BuildStatus     { return b.status }
func (b *BuildRecord) ErrorMessage() string    { return b.errorMessage }
func (b *BuildRecord) StartedAt() time.Time    { return b.startedAt }
func (b *BuildRecord) CompletedAt() *time.Time { return b.completedAt }
func (b *BuildRecord) CreatedAt() time.Time    { return b.createdAt }
func (b *BuildRecord) UpdatedAt() time.Time    { return b.updatedAt }
func (b *BuildRecord) DeletedAt() *time.Time   { return b.deletedAt }

func (b *BuildRecord) SetID(id string)             { b.id = id }
func (b *BuildRecord) SetCreatedAt(t time.Time)    { b.createdAt = t }
func (b *BuildRecord) SetUpdatedAt(t time.Time)    { b.updatedAt = t }
func (b *BuildRecord) SetDeletedAt(t *time.Time)   { b.deletedAt = t }
func (b *BuildRecord) SetStatus(s BuildStatus)     { b.status = s }
func (b *BuildRecord) SetProviderID(id string)     { b.providerID = id }
func (b *BuildRecord) SetErrorMessage(msg string)  { b.errorMessage = msg }
func (b *BuildRecord) SetStartedAt(t time.Time)    { b.startedAt = t }
func (b *BuildRecord) SetCompletedAt(t *time.Time) { b.completedAt = t }

// Complete records a terminal status for the attempt. The provider id is
// required for succeeded and inconsistent attempts, the error message for
// failed and inconsistent ones.
func (b *BuildRecord) Complete(status BuildStatus, providerID, errorMessage string) {
	now := time.Now()
	b.status = status
	b.providerID = providerID
	b.errorMessage = errorMessage
	b.completedAt = &now
	b.updatedAt = now
}

// BuildView is the serializable representation of a build record.
type BuildView struct {
	ID           string      `json:"id"`
	PlaylistID   string      `json:"playlist_id"`
	Provider     string      `json:"provider"`
	ProviderID   string      `json:"provider_id,omitempty"`
	Status       BuildStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// View renders the record for API responses and CLI output.
func (b *BuildRecord) View() BuildView {
	return BuildView{
		ID:           b.id,
		PlaylistID:   b.playlistID,
		Provider:     b.provider,
		ProviderID:   b.providerID,
		Status:       b.status,
		ErrorMessage: b.errorMessage,
		StartedAt:    b.startedAt,
		CompletedAt:  b.completedAt,
	}
}

// Validate checks the record's data.
func (b *BuildRecord) Validate() error {
	if b.playlistID == "" {
		return fmt.Errorf("build record requires a playlist id")
	}
	if b.ownerID == "" {
		return fmt.Errorf("build record requires an owner id")
	}
	switch b.status {
	case BuildPending:
	case BuildSucceeded, BuildInconsistent:
		if b.providerID == "" {
			return fmt.Errorf("%s build record requires a provider id", b.status)
		}
	case BuildFailed:
		if b.errorMessage == "" {
			return fmt.Errorf("failed build record requires an error message")
		}
	default:
		return fmt.Errorf("unknown build status: %s", b.status)
	}
	return nil
}
