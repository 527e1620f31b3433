// package services defines capability interfaces for the pipeline's external collaborators
//
// Generator (LLM), Catalog (track lookup), Provider (playlist publishing)
package services

import (
	"context"

	"github.com/desertthunder/mixtape/internal/models"
)

// GenerationRequest asks the generator for candidate tracks matching a prompt.
type GenerationRequest struct {
	Prompt  string `json:"prompt"`
	Count   int    `json:"count,omitempty"`
	Artists string `json:"artists,omitempty"` // optional comma-separated artist hint
}

// Generator turns a natural-language prompt into an ordered list of candidate
// tracks. Output is untrusted: candidates may be hallucinated and must pass
// catalog verification before they reach a playlist.
type Generator interface {
	// Generate proposes a playlist for the prompt.
	// Returns an error wrapping [shared.ErrGeneration] when the upstream
	// model is unavailable or returns unusable output.
	Generate(ctx context.Context, req GenerationRequest) (*models.GeneratedPlaylist, error)

	// Name returns the name of the generator backend
	Name() string
}

// Catalog looks up candidate (artist, title) pairs against an authoritative
// music catalog.
type Catalog interface {
	// Search returns ranked catalog matches for the artist/title pair.
	// An empty result slice is a valid answer. Failures wrap
	// [shared.ErrCatalogNotFound] or [shared.ErrCatalogTransient].
	Search(ctx context.Context, artist, title string) ([]models.Track, error)

	// Name returns the name of the catalog backend
	Name() string
}

// Provider creates playlists on an external streaming service.
type Provider interface {
	// Publish creates the playlist remotely and returns the provider's
	// playlist identifier. Failures wrap [shared.ErrProviderPublish].
	Publish(ctx context.Context, playlist *models.Playlist) (string, error)

	// Name returns the name of the streaming provider
	Name() string
}
