package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	internaltest "github.com/desertthunder/mixtape/internal/testing"
)

func TestBuild(t *testing.T) {
	t.Run("builds from inline payload", func(t *testing.T) {
		provider := &internaltest.MockProvider{ProviderID: "sp-playlist-1"}
		engine, _, builds := newTestEngine(t, nil, nil, provider)

		payload := testPayload()
		result, err := engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{PlaylistData: &payload})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.AlreadyBuilt {
			t.Error("expected a fresh build, got AlreadyBuilt")
		}
		if result.Playlist.Status() != models.StatusTransmitted {
			t.Errorf("expected transmitted status, got %s", result.Playlist.Status())
		}
		if result.ProviderID() != "sp-playlist-1" {
			t.Errorf("expected provider id sp-playlist-1, got %s", result.ProviderID())
		}
		if len(provider.Published) != 1 {
			t.Errorf("expected 1 publish call, got %d", len(provider.Published))
		}

		records, err := builds.List(map[string]any{"playlist_id": result.Playlist.ID()})
		if err != nil {
			t.Fatalf("failed to list build records: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 build record, got %d", len(records))
		}
		if records[0].Status() != models.BuildSucceeded {
			t.Errorf("expected succeeded record, got %s", records[0].Status())
		}
	})

	t.Run("builds an existing draft by id", func(t *testing.T) {
		provider := &internaltest.MockProvider{}
		engine, playlists, _ := newTestEngine(t, nil, nil, provider)

		draft, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		result, err := engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{PlaylistID: draft.ID()})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Playlist.Status() != models.StatusTransmitted {
			t.Errorf("expected transmitted status, got %s", result.Playlist.Status())
		}

		stored, err := playlists.Get(draft.ID())
		if err != nil {
			t.Fatalf("failed to reload playlist: %v", err)
		}
		if stored.Status() != models.StatusTransmitted {
			t.Errorf("expected stored playlist transmitted, got %s", stored.Status())
		}
		if stored.ProviderID() == "" {
			t.Error("expected stored provider id")
		}
	})

	t.Run("second build short-circuits without publishing", func(t *testing.T) {
		provider := &internaltest.MockProvider{ProviderID: "sp-first"}
		engine, _, builds := newTestEngine(t, nil, nil, provider)

		draft, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		req := models.BuildRequest{PlaylistID: draft.ID()}
		if _, err := engine.Build(context.Background(), nil, "owner-1", req); err != nil {
			t.Fatalf("first build failed: %v", err)
		}

		result, err := engine.Build(context.Background(), nil, "owner-1", req)
		if err != nil {
			t.Fatalf("second build failed: %v", err)
		}

		if !result.AlreadyBuilt {
			t.Error("expected AlreadyBuilt on second build")
		}
		if result.ProviderID() != "sp-first" {
			t.Errorf("expected original provider id, got %s", result.ProviderID())
		}
		if len(provider.Published) != 1 {
			t.Errorf("expected exactly 1 publish call, got %d", len(provider.Published))
		}

		records, err := builds.List(map[string]any{"playlist_id": draft.ID()})
		if err != nil {
			t.Fatalf("failed to list build records: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected no record for the short-circuit, got %d records", len(records))
		}
	})

	t.Run("rejects request naming both id and data", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, &internaltest.MockProvider{})

		payload := testPayload()
		_, err := engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{
			PlaylistID:   "p-1",
			PlaylistData: &payload,
		})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects empty request", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, &internaltest.MockProvider{})

		_, err := engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects empty playlist", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, &internaltest.MockProvider{})

		draft, err := engine.CreatePlaylist("owner-1", models.PlaylistPayload{Name: "Empty"})
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		_, err = engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{PlaylistID: draft.ID()})
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("denies another owner's draft", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, &internaltest.MockProvider{})

		draft, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		_, err = engine.Build(context.Background(), nil, "owner-2", models.BuildRequest{PlaylistID: draft.ID()})
		if !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("publish failure records a failed attempt", func(t *testing.T) {
		provider := &internaltest.MockProvider{Err: errors.New("provider rejected the request")}
		engine, playlists, builds := newTestEngine(t, nil, nil, provider)

		draft, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		_, err = engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{PlaylistID: draft.ID()})
		if !errors.Is(err, shared.ErrProviderPublish) {
			t.Fatalf("expected ErrProviderPublish, got %v", err)
		}

		stored, err := playlists.Get(draft.ID())
		if err != nil {
			t.Fatalf("failed to reload playlist: %v", err)
		}
		if stored.Status() != models.StatusDraft {
			t.Errorf("expected playlist to stay draft, got %s", stored.Status())
		}

		records, err := builds.List(map[string]any{"playlist_id": draft.ID()})
		if err != nil {
			t.Fatalf("failed to list build records: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 build record, got %d", len(records))
		}
		if records[0].Status() != models.BuildFailed {
			t.Errorf("expected failed record, got %s", records[0].Status())
		}
		if records[0].ErrorMessage() == "" {
			t.Error("expected error message on failed record")
		}
	})

	t.Run("retry after failure publishes", func(t *testing.T) {
		provider := &internaltest.MockProvider{Err: errors.New("transient outage")}
		engine, _, builds := newTestEngine(t, nil, nil, provider)

		draft, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		req := models.BuildRequest{PlaylistID: draft.ID()}
		if _, err := engine.Build(context.Background(), nil, "owner-1", req); err == nil {
			t.Fatal("expected first build to fail")
		}

		provider.Err = nil
		result, err := engine.Build(context.Background(), nil, "owner-1", req)
		if err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if result.Playlist.Status() != models.StatusTransmitted {
			t.Errorf("expected transmitted status after retry, got %s", result.Playlist.Status())
		}

		records, err := builds.List(map[string]any{"playlist_id": draft.ID()})
		if err != nil {
			t.Fatalf("failed to list build records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 build records, got %d", len(records))
		}
	})

	t.Run("requires a provider", func(t *testing.T) {
		engine, _, _ := newTestEngine(t, nil, nil, nil)

		_, err := engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{PlaylistID: "p-1"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("concurrent builds publish once", func(t *testing.T) {
		provider := &internaltest.MockProvider{}
		engine, _, _ := newTestEngine(t, nil, nil, provider)

		draft, err := engine.CreatePlaylist("owner-1", testPayload())
		if err != nil {
			t.Fatalf("failed to create draft: %v", err)
		}

		req := models.BuildRequest{PlaylistID: draft.ID()}
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = engine.Build(context.Background(), nil, "owner-1", req)
			}()
		}
		wg.Wait()

		if len(provider.Published) != 1 {
			t.Errorf("expected exactly 1 publish across concurrent builds, got %d", len(provider.Published))
		}
	})
}

func TestListBuilds(t *testing.T) {
	t.Run("scopes records to the owner", func(t *testing.T) {
		provider := &internaltest.MockProvider{}
		engine, _, _ := newTestEngine(t, nil, nil, provider)

		payload := testPayload()
		if _, err := engine.Build(context.Background(), nil, "owner-1", models.BuildRequest{PlaylistData: &payload}); err != nil {
			t.Fatalf("build failed: %v", err)
		}
		other := testPayload()
		if _, err := engine.Build(context.Background(), nil, "owner-2", models.BuildRequest{PlaylistData: &other}); err != nil {
			t.Fatalf("build failed: %v", err)
		}

		records, err := engine.ListBuilds("owner-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record for owner-1, got %d", len(records))
		}
		if records[0].OwnerID() != "owner-1" {
			t.Errorf("expected owner-1 record, got %s", records[0].OwnerID())
		}
	})
}
