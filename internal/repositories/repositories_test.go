package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func draftPlaylist(name string) *models.Playlist {
	return models.NewPlaylist(0, "owner-1", models.PlaylistPayload{
		Name:        name,
		Description: "Test Description",
		Public:      true,
		Tracks: []models.Track{
			{ID: "t1", Artist: "Artist One", Title: "First Song", DurationMS: 180000},
			{ID: "t2", Artist: "Artist Two", Title: "Second Song", DurationMS: 210000},
		},
	})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		err := repo.Create(playlist)
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if playlist.ID() == "" {
			t.Error("playlist ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if retrieved.Name() != "Test Playlist" {
			t.Errorf("expected name 'Test Playlist', got %s", retrieved.Name())
		}

		if retrieved.Status() != models.StatusDraft {
			t.Errorf("expected draft status, got %s", retrieved.Status())
		}

		tracks := retrieved.Tracks()
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
			t.Errorf("expected tracks in insertion order, got %s then %s", tracks[0].ID, tracks[1].ID)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		_, err := repo.Get("nope")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlist.ApplyPayload(models.PlaylistPayload{
			Name:   "Renamed Playlist",
			Public: false,
			Tracks: []models.Track{
				{ID: "t3", Artist: "Artist Three", Title: "Third Song"},
			},
		})

		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if retrieved.Name() != "Renamed Playlist" {
			t.Errorf("expected renamed playlist, got %s", retrieved.Name())
		}
		if len(retrieved.Tracks()) != 1 {
			t.Errorf("expected replaced track listing, got %d tracks", len(retrieved.Tracks()))
		}
	})

	t.Run("MarkTransmitted", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := repo.MarkTransmitted(playlist.ID(), "Spotify", "sp123"); err != nil {
			t.Fatalf("failed to mark transmitted: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if retrieved.Status() != models.StatusTransmitted {
			t.Errorf("expected transmitted status, got %s", retrieved.Status())
		}
		if retrieved.ProviderID() != "sp123" {
			t.Errorf("expected provider id sp123, got %s", retrieved.ProviderID())
		}
		if retrieved.Provider() != "Spotify" {
			t.Errorf("expected provider Spotify, got %s", retrieved.Provider())
		}
	})

	t.Run("MarkTransmitted Twice", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := repo.MarkTransmitted(playlist.ID(), "Spotify", "sp123"); err != nil {
			t.Fatalf("failed to mark transmitted: %v", err)
		}

		err := repo.MarkTransmitted(playlist.ID(), "Spotify", "sp456")
		if !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState on second transition, got %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.ProviderID() != "sp123" {
			t.Errorf("expected first provider id to win, got %s", retrieved.ProviderID())
		}
	})

	t.Run("Update Transmitted", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if err := repo.MarkTransmitted(playlist.ID(), "Spotify", "sp123"); err != nil {
			t.Fatalf("failed to mark transmitted: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		retrieved.ApplyPayload(models.PlaylistPayload{Name: "Should Not Apply", Tracks: retrieved.Tracks()})
		err = repo.Update(retrieved)
		if !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState updating transmitted playlist, got %v", err)
		}

		// The status guard must also win when the payload itself would fail
		// validation, such as a rename that carries no tracks.
		retrieved.ApplyPayload(models.PlaylistPayload{Name: "New Name"})
		err = repo.Update(retrieved)
		if !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState for trackless update of transmitted playlist, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if err := repo.Delete(playlist.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		_, err := repo.Get(playlist.ID())
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete Transmitted", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := draftPlaylist("Test Playlist")

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if err := repo.MarkTransmitted(playlist.ID(), "Spotify", "sp123"); err != nil {
			t.Fatalf("failed to mark transmitted: %v", err)
		}

		err := repo.Delete(playlist.ID())
		if !errors.Is(err, shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState deleting transmitted playlist, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)

		first := draftPlaylist("First Playlist")
		second := draftPlaylist("Second Playlist")
		other := models.NewPlaylist(0, "owner-2", models.PlaylistPayload{
			Name:   "Other Owner Playlist",
			Tracks: []models.Track{{ID: "t9", Artist: "A", Title: "B"}},
		})

		for _, playlist := range []*models.Playlist{first, second, other} {
			if err := repo.Create(playlist); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 playlists, got %d", len(all))
		}

		mine, err := repo.ListByOwner("owner-1")
		if err != nil {
			t.Fatalf("failed to list by owner: %v", err)
		}
		if len(mine) != 2 {
			t.Errorf("expected 2 playlists for owner-1, got %d", len(mine))
		}
		if len(mine) == 2 && mine[0].Name() != "First Playlist" {
			t.Errorf("expected sequence order, got %s first", mine[0].Name())
		}

		drafts, err := repo.List(map[string]any{"status": string(models.StatusDraft)})
		if err != nil {
			t.Fatalf("failed to list drafts: %v", err)
		}
		if len(drafts) != 3 {
			t.Errorf("expected 3 draft playlists, got %d", len(drafts))
		}
	})
}

func TestBuildRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewBuildRepository(db)
		build := models.NewBuildRecord(0, "playlist-1", "owner-1", "Spotify")

		if err := repo.Create(build); err != nil {
			t.Fatalf("failed to create build record: %v", err)
		}

		retrieved, err := repo.Get(build.ID())
		if err != nil {
			t.Fatalf("failed to get build record: %v", err)
		}

		if retrieved.Status() != models.BuildPending {
			t.Errorf("expected pending status, got %s", retrieved.Status())
		}
		if retrieved.PlaylistID() != "playlist-1" {
			t.Errorf("expected playlist-1, got %s", retrieved.PlaylistID())
		}
	})

	t.Run("Update Completes Attempt", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewBuildRepository(db)
		build := models.NewBuildRecord(0, "playlist-1", "owner-1", "Spotify")

		if err := repo.Create(build); err != nil {
			t.Fatalf("failed to create build record: %v", err)
		}

		build.Complete(models.BuildSucceeded, "sp123", "")
		if err := repo.Update(build); err != nil {
			t.Fatalf("failed to update build record: %v", err)
		}

		retrieved, err := repo.Get(build.ID())
		if err != nil {
			t.Fatalf("failed to get build record: %v", err)
		}

		if retrieved.Status() != models.BuildSucceeded {
			t.Errorf("expected succeeded status, got %s", retrieved.Status())
		}
		if retrieved.ProviderID() != "sp123" {
			t.Errorf("expected provider id sp123, got %s", retrieved.ProviderID())
		}
		if retrieved.CompletedAt() == nil {
			t.Error("expected completed_at to be set")
		}
	})

	t.Run("List By Playlist", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewBuildRepository(db)

		first := models.NewBuildRecord(0, "playlist-1", "owner-1", "Spotify")
		second := models.NewBuildRecord(0, "playlist-1", "owner-1", "Spotify")
		other := models.NewBuildRecord(0, "playlist-2", "owner-1", "Spotify")

		for _, build := range []*models.BuildRecord{first, second, other} {
			if err := repo.Create(build); err != nil {
				t.Fatalf("failed to create build record: %v", err)
			}
		}

		second.Complete(models.BuildFailed, "", "provider rejected the playlist")
		if err := repo.Update(second); err != nil {
			t.Fatalf("failed to update build record: %v", err)
		}

		builds, err := repo.List(map[string]any{"playlist_id": "playlist-1"})
		if err != nil {
			t.Fatalf("failed to list build records: %v", err)
		}
		if len(builds) != 2 {
			t.Fatalf("expected 2 build records, got %d", len(builds))
		}
		if builds[0].ID() != second.ID() {
			t.Error("expected newest attempt first")
		}

		failed, err := repo.List(map[string]any{"status": string(models.BuildFailed)})
		if err != nil {
			t.Fatalf("failed to list failed builds: %v", err)
		}
		if len(failed) != 1 {
			t.Errorf("expected 1 failed build, got %d", len(failed))
		}
		if len(failed) == 1 && failed[0].ErrorMessage() != "provider rejected the playlist" {
			t.Errorf("expected error message to round-trip, got %q", failed[0].ErrorMessage())
		}
	})
}

func TestTrackRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		track := models.Track{
			ID:         "spotify123",
			Artist:     "Test Artist",
			Title:      "Test Song",
			Album:      "Test Album",
			DurationMS: 180000,
		}

		if err := repo.Create("Spotify", "test artist|test song", track); err != nil {
			t.Fatalf("failed to record track: %v", err)
		}

		retrieved, err := repo.Get("Spotify", "test artist|test song")
		if err != nil {
			t.Fatalf("failed to get recorded track: %v", err)
		}

		if retrieved.ID != "spotify123" {
			t.Errorf("expected spotify123, got %s", retrieved.ID)
		}
		if retrieved.Title != "Test Song" {
			t.Errorf("expected title 'Test Song', got %s", retrieved.Title)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)

		_, err := repo.Get("Spotify", "unknown|key")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Rejects Track Without Catalog ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)

		err := repo.Create("Spotify", "a|b", models.Track{Artist: "A", Title: "B"})
		if err == nil {
			t.Error("expected error recording track without catalog id")
		}
	})
}

func TestTrackRepositoryRecord(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewTrackRepository(db)

	track := models.Track{
		ID:     "spotify123",
		Artist: "Test Artist",
		Title:  "Test Song",
	}

	if err := repo.Record("Spotify", "test artist|test song", track); err != nil {
		t.Fatalf("failed to record track: %v", err)
	}

	if err := repo.Record("Spotify", "test artist|test song", track); err != nil {
		t.Fatalf("recording a duplicate key should not error: %v", err)
	}

	recorded, err := repo.Get("Spotify", "test artist|test song")
	if err != nil {
		t.Fatalf("expected recorded track: %v", err)
	}
	if recorded.ID != "spotify123" {
		t.Errorf("expected spotify123, got %s", recorded.ID)
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seq1, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}

	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	// Get second sequence
	seq2, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}

	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	buildSeq, err := NextSequence(db, "builds")
	if err != nil {
		t.Fatalf("failed to get build sequence: %v", err)
	}

	if buildSeq != 1 {
		t.Errorf("expected first build sequence to be 1, got %d", buildSeq)
	}
}
