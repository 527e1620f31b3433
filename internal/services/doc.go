// Package services defines the capability interfaces the playlist pipeline
// depends on ([Generator], [Catalog], [Provider]) and implements them for
// OpenAI-compatible language models and Spotify.
//
// # Capability Interfaces
//
// Each interface covers one external concern so pipeline stages can be wired
// and tested independently:
//   - [Generator] proposes candidate tracks from a free-text prompt
//   - [Catalog] looks candidates up against a music catalog
//   - [Provider] publishes verified playlists to a streaming account
//
// # Generator Implementation
//
// [OpenAIGenerator] speaks the /chat/completions wire format, so any
// OpenAI-compatible endpoint (hosted or local) can back it. The model reply
// is parsed as JSON; candidate tracks are unverified until the catalog
// confirms them.
//
// # Spotify Implementation
//
// [SpotifyService] implements both [Catalog] and [Provider] against the
// Spotify Web API, using OAuth2 with automatic token refresh via
// [oauth2.Client].
//
// # Error Handling
//
// Services wrap failures with sentinels from the shared package:
//   - [shared.ErrGeneration] : the generator call or its output parsing failed
//   - [shared.ErrCatalogNotFound] : a catalog lookup returned no usable result
//   - [shared.ErrCatalogTransient] : a catalog lookup failed and may succeed on retry
//   - [shared.ErrProviderPublish] : publishing to the streaming provider failed
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
package services
