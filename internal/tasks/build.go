package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// BuildResult contains the outcome of a build operation.
type BuildResult struct {
	Playlist     *models.Playlist    // Playlist after the operation
	Record       *models.BuildRecord // Audit record, nil when no attempt was made
	AlreadyBuilt bool                // True when the playlist was already transmitted
}

// ProviderID returns the provider's identifier for the published playlist.
func (r *BuildResult) ProviderID() string {
	return r.Playlist.ProviderID()
}

// Build publishes a playlist to the provider exactly once.
//
// The request selects either an existing draft by id or an inline payload that
// is persisted first. A playlist that is already transmitted short-circuits
// with its existing provider id instead of publishing a duplicate. Within this
// process a per-playlist mutex serializes concurrent builds; across processes
// the store's compare-and-swap transition guards the same invariant.
//
// Every attempt that reaches the provider leaves a build record: succeeded,
// failed, or inconsistent when the provider accepted the playlist but the
// local transition could not be recorded.
func (e *PipelineEngine) Build(ctx context.Context, prog chan<- ProgressUpdate, ownerID string, req models.BuildRequest) (*BuildResult, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("%w: provider not initialized", shared.ErrServiceUnavailable)
	}
	if e.playlists == nil || e.builds == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	mode, err := req.Mode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	var playlist *models.Playlist
	switch mode {
	case models.BuildByID:
		playlist, err = e.GetPlaylist(ownerID, req.PlaylistID)
		if err != nil {
			return nil, err
		}
	case models.BuildByData:
		e.sendProgress(prog, persistingUpdate(req.PlaylistData.Name))
		playlist, err = e.CreatePlaylist(ownerID, *req.PlaylistData)
		if err != nil {
			return nil, err
		}
	}

	lock := e.playlistLock(playlist.ID())
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent build may have finished.
	playlist, err = e.playlists.Get(playlist.ID())
	if err != nil {
		return nil, err
	}

	if playlist.Status() == models.StatusTransmitted {
		return &BuildResult{Playlist: playlist, AlreadyBuilt: true}, nil
	}

	if len(playlist.Tracks()) == 0 {
		return nil, fmt.Errorf("%w: cannot build an empty playlist", shared.ErrValidation)
	}

	record := models.NewBuildRecord(0, playlist.ID(), ownerID, e.provider.Name())
	if err := e.builds.Create(record); err != nil {
		return nil, fmt.Errorf("failed to record build attempt: %w", err)
	}

	e.sendProgress(prog, publishingUpdate(playlist, e.provider.Name()))

	publishCtx, cancel := context.WithTimeout(ctx, e.timeouts.ProviderTimeout())
	providerID, err := e.provider.Publish(publishCtx, playlist)
	cancel()
	if err != nil {
		if !errors.Is(err, shared.ErrProviderPublish) {
			err = fmt.Errorf("%w: %v", shared.ErrProviderPublish, err)
		}
		record.Complete(models.BuildFailed, "", err.Error())
		e.completeRecord(record)
		return nil, err
	}

	if err := e.playlists.MarkTransmitted(playlist.ID(), e.provider.Name(), providerID); err != nil {
		// The remote playlist exists; retrying would duplicate it.
		record.Complete(models.BuildInconsistent, providerID, err.Error())
		e.completeRecord(record)
		playlist.SetTransmitted(e.provider.Name(), providerID)
		return &BuildResult{Playlist: playlist, Record: record},
			fmt.Errorf("published as %s but failed to record transmission: %w", providerID, err)
	}

	record.Complete(models.BuildSucceeded, providerID, "")
	e.completeRecord(record)

	playlist.SetTransmitted(e.provider.Name(), providerID)
	e.sendProgress(prog, publishedUpdate(playlist, providerID))

	return &BuildResult{Playlist: playlist, Record: record}, nil
}

// completeRecord persists a terminal build record.
// The record is an audit trail; losing the update does not change the
// playlist's state, so failures are swallowed.
func (e *PipelineEngine) completeRecord(record *models.BuildRecord) {
	_ = e.builds.Update(record)
}

// playlistLock returns the per-playlist mutex, creating it on first use.
func (e *PipelineEngine) playlistLock(id string) *sync.Mutex {
	lock, _ := e.buildLocks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
