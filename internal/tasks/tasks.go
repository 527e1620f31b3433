// package tasks implements the prompt to published-playlist pipeline.
//
// The core abstraction is PipelineEngine, which orchestrates generation,
// catalog verification, playlist persistence, and provider builds.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
)

// PlaylistStore is the persistence surface the pipeline needs for playlists.
type PlaylistStore interface {
	Create(playlist *models.Playlist) error
	Get(id string) (*models.Playlist, error)
	Update(playlist *models.Playlist) error
	Delete(id string) error
	MarkTransmitted(id, provider, providerID string) error
	ListByOwner(ownerID string) ([]*models.Playlist, error)
}

// BuildStore records build attempts.
type BuildStore interface {
	Create(build *models.BuildRecord) error
	Update(build *models.BuildRecord) error
	List(criteria map[string]any) ([]*models.BuildRecord, error)
}

// TrackRecorder persists catalog-verified tracks by normalized lookup key.
// Recording is write-only bookkeeping; failures must not fail verification.
type TrackRecorder interface {
	Record(provider, lookupKey string, track models.Track) error
}

// PipelineEngine wires the pipeline stages together.
// Any collaborator may be nil; operations needing a missing one return
// [shared.ErrServiceUnavailable].
type PipelineEngine struct {
	generator services.Generator
	catalog   services.Catalog
	provider  services.Provider
	playlists PlaylistStore
	builds    BuildStore
	recorder  TrackRecorder
	timeouts  shared.TimeoutConfig

	buildLocks sync.Map // playlist id -> *sync.Mutex
}

// NewPipelineEngine creates a new PipelineEngine with the provided collaborators.
func NewPipelineEngine(
	generator services.Generator,
	catalog services.Catalog,
	provider services.Provider,
	playlists PlaylistStore,
	builds BuildStore,
	timeouts shared.TimeoutConfig,
) *PipelineEngine {
	return &PipelineEngine{
		generator: generator,
		catalog:   catalog,
		provider:  provider,
		playlists: playlists,
		builds:    builds,
		timeouts:  timeouts,
	}
}

// SetTrackRecorder installs an optional verified-track recorder.
func (e *PipelineEngine) SetTrackRecorder(recorder TrackRecorder) {
	e.recorder = recorder
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Generate asks the generator for a candidate playlist. The candidates are
// unverified; callers hand them to [PipelineEngine.Verify] before persisting.
func (e *PipelineEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, req services.GenerationRequest) (*models.GeneratedPlaylist, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generator not initialized", shared.ErrServiceUnavailable)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", shared.ErrValidation)
	}

	e.sendProgress(progress, generatingUpdate(req.Prompt))

	genCtx, cancel := context.WithTimeout(ctx, e.timeouts.GeneratorTimeout())
	defer cancel()

	playlist, err := e.generator.Generate(genCtx, req)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, generatedUpdate(playlist))
	return playlist, nil
}

// CreatePlaylist persists a new draft playlist for the owner.
func (e *PipelineEngine) CreatePlaylist(ownerID string, payload models.PlaylistPayload) (*models.Playlist, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", shared.ErrValidation)
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	playlist := models.NewPlaylist(0, ownerID, payload)
	if err := e.playlists.Create(playlist); err != nil {
		return nil, err
	}

	return playlist, nil
}

// GetPlaylist retrieves one of the owner's playlists.
// Another owner's playlist reads as [shared.ErrUnauthorized], not as missing.
func (e *PipelineEngine) GetPlaylist(ownerID, id string) (*models.Playlist, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}

	playlist, err := e.playlists.Get(id)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID() != ownerID {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrUnauthorized, id)
	}

	return playlist, nil
}

// UpdatePlaylist applies a payload to one of the owner's draft playlists.
func (e *PipelineEngine) UpdatePlaylist(ownerID, id string, payload models.PlaylistPayload) (*models.Playlist, error) {
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	playlist, err := e.GetPlaylist(ownerID, id)
	if err != nil {
		return nil, err
	}

	playlist.ApplyPayload(payload)
	if err := e.playlists.Update(playlist); err != nil {
		return nil, err
	}

	return playlist, nil
}

// DeletePlaylist soft-deletes one of the owner's draft playlists.
func (e *PipelineEngine) DeletePlaylist(ownerID, id string) error {
	if _, err := e.GetPlaylist(ownerID, id); err != nil {
		return err
	}
	return e.playlists.Delete(id)
}

// ListPlaylists returns the owner's playlists in creation order.
func (e *PipelineEngine) ListPlaylists(ownerID string) ([]*models.Playlist, error) {
	if e.playlists == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}
	return e.playlists.ListByOwner(ownerID)
}

// ListBuilds returns the owner's build history, newest first.
func (e *PipelineEngine) ListBuilds(ownerID string) ([]*models.BuildRecord, error) {
	if e.builds == nil {
		return nil, fmt.Errorf("%w: build store not initialized", shared.ErrServiceUnavailable)
	}
	return e.builds.List(map[string]any{"owner_id": ownerID})
}
