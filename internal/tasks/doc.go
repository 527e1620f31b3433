// Package tasks orchestrates the prompt to published-playlist pipeline with real-time progress reporting.
//
// # Core Operations
//
// [PipelineEngine] exposes the pipeline stages:
//
//  1. [PipelineEngine.Generate] : Prompt → candidate tracks
//     - Sends the prompt to the configured generator
//     - Returns an unverified candidate playlist
//
//  2. [PipelineEngine.Verify] : Candidates → verified tracks
//     - Fans lookups out over a bounded worker pool with rate limiting
//     - Matches each candidate against ranked catalog results
//     - Partitions the batch into verified tracks and rejected labels,
//       preserving input order
//
//  3. [PipelineEngine.Build] : Draft playlist → provider playlist
//     - Resolves the build target by id or inline payload
//     - Publishes to the provider exactly once per playlist
//     - Records every attempt as a [models.BuildRecord]
//
// Playlist CRUD operations wrap the store with ownership checks: a caller only
// ever sees its own playlists.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Track Recording
//
// The optional [TrackRecorder] interface keeps a write-only record of
// catalog-verified tracks by normalized lookup key. Verification always
// queries the catalog; recorder failures never fail a verification batch.
package tasks
