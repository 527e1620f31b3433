package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	internaltest "github.com/desertthunder/mixtape/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// newTestEngine builds an engine over real SQLite stores and test doubles for
// the external services.
func newTestEngine(t *testing.T, generator services.Generator, catalog services.Catalog, provider services.Provider) (*PipelineEngine, *repositories.PlaylistRepository, *repositories.BuildRepository) {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	playlists := repositories.NewPlaylistRepository(db)
	builds := repositories.NewBuildRepository(db)

	engine := NewPipelineEngine(generator, catalog, provider, playlists, builds, shared.TimeoutConfig{})
	return engine, playlists, builds
}

func TestGenerate(t *testing.T) {
	t.Run("returns candidate playlist", func(t *testing.T) {
		generator := &internaltest.MockGenerator{
			Playlist: &models.GeneratedPlaylist{
				Title: "Night Drive",
				Tracks: []models.CandidateTrack{
					{Artist: "M83", Title: "Midnight City"},
				},
			},
		}
		engine, _, _ := newTestEngine(t, generator, nil, nil)

		playlist, err := engine.Generate(context.Background(), nil, services.GenerationRequest{Prompt: "night drive"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if playlist.Title != "Night Drive" {
			t.Errorf("expected title 'Night Drive', got %s", playlist.Title)
		}
		if generator.Calls != 1 {
			t.Errorf("expected 1 generator call, got %d", generator.Calls)
		}
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, &internaltest.MockGenerator{}, nil, nil)

		_, err := engine.Generate(context.Background(), nil, services.GenerationRequest{Prompt: "  "})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("requires a generator", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		_, err := engine.Generate(context.Background(), nil, services.GenerationRequest{Prompt: "night drive"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("propagates generator failures", func(t *testing.T) {
		generator := &internaltest.MockGenerator{Err: shared.ErrGeneration}
		engine, _, _ := newTestEngine(t, generator, nil, nil)

		_, err := engine.Generate(context.Background(), nil, services.GenerationRequest{Prompt: "night drive"})
		if !errors.Is(err, shared.ErrGeneration) {
			t.Errorf("expected ErrGeneration, got %v", err)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		generator := &internaltest.MockGenerator{}
		engine, _, _ := newTestEngine(t, generator, nil, nil)

		progress := make(chan ProgressUpdate, 8)
		_, err := engine.Generate(context.Background(), progress, services.GenerationRequest{Prompt: "night drive"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		count := 0
		for update := range progress {
			count++
			if update.Phase != Generating {
				t.Errorf("expected generating phase, got %s", update.Phase)
			}
		}
		if count == 0 {
			t.Fatal("expected progress updates")
		}
	})
}

func testPayload() models.PlaylistPayload {
	return models.PlaylistPayload{
		Name:   "Night Drive",
		Public: true,
		Tracks: []models.Track{
			{ID: "t1", Artist: "M83", Title: "Midnight City"},
		},
	}
}

func TestPlaylistOperations(t *testing.T) {
	t.Run("CreatePlaylist", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		playlist, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if playlist.ID() == "" {
			t.Error("expected playlist id to be assigned")
		}
		if playlist.Status() != models.StatusDraft {
			t.Errorf("expected draft status, got %s", playlist.Status())
		}
	})

	t.Run("CreatePlaylist requires owner", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		_, err := engine.CreatePlaylist("", testPayload())
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("CreatePlaylist validates payload", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		_, err := engine.CreatePlaylist("owner-1", models.PlaylistPayload{Name: ""})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("GetPlaylist enforces ownership", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		playlist, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if _, err := engine.GetPlaylist("owner-1", playlist.ID()); err != nil {
			t.Errorf("owner should read own playlist, got %v", err)
		}

		_, err = engine.GetPlaylist("owner-2", playlist.ID())
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized for other owner, got %v", err)
		}
	})

	t.Run("GetPlaylist missing", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		_, err := engine.GetPlaylist("owner-1", "nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdatePlaylist", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		playlist, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		payload := testPayload()
		payload.Name = "Renamed"
		updated, err := engine.UpdatePlaylist("owner-1", playlist.ID(), payload)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Name() != "Renamed" {
			t.Errorf("expected renamed playlist, got %s", updated.Name())
		}
	})

	t.Run("UpdatePlaylist rejects transmitted playlist", func(t *testing.T) {
		engine, playlists, _ := newTestEngine(t, nil, nil, nil)

		playlist, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if err := playlists.MarkTransmitted(playlist.ID(), "mock-provider", "prov1"); err != nil {
			t.Fatalf("failed to mark transmitted: %v", err)
		}

		// A rename without tracks must still surface the lifecycle error,
		// not a complaint about the emptied track listing.
		_, err = engine.UpdatePlaylist("owner-1", playlist.ID(), models.PlaylistPayload{Name: "New Name"})
		if !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("UpdatePlaylist enforces ownership", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		playlist, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		_, err = engine.UpdatePlaylist("owner-2", playlist.ID(), testPayload())
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("DeletePlaylist", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		playlist, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := engine.DeletePlaylist("owner-1", playlist.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, err = engine.GetPlaylist("owner-1", playlist.ID())
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("ListPlaylists scopes to owner", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		if _, err := engine.CreatePlaylist("owner-1", testPayload()); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if _, err := engine.CreatePlaylist("owner-2", testPayload()); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		mine, err := engine.ListPlaylists("owner-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(mine) != 1 {
			t.Errorf("expected 1 playlist for owner-1, got %d", len(mine))
		}
	})
}
