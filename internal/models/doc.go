// Package models defines domain entities and persistence interfaces for the mixtape playlist pipeline.
//
// The package contains two categories of types:
//
// 1. Wire types: Lightweight structs crossing component boundaries
//   - [Track] : Catalog-confirmed song metadata
//   - [CandidateTrack] : Unverified track proposal from the generator
//   - [GeneratedPlaylist] : Generator output (title, description, candidates)
//   - [VerificationResponse] : Partitioned verification results
//   - [PlaylistPayload] : Create/update request body for playlists
//   - [BuildRequest] : Tagged union selecting an existing playlist or inline data
//
// 2. Persistent entities: Database-backed models with full lifecycle management
//   - [Playlist] : Owned playlists with draft/transmitted lifecycle state
//   - [BuildRecord] : Publish attempts tracking outcome per playlist
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
