// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [PlaylistRepository] : Playlist persistence with ordered track storage and the draft/transmitted lifecycle
//   - [BuildRepository] : Build attempt history with status tracking
//   - [TrackRepository] : Record of catalog-verified tracks keyed by normalized lookup key
//
// The lifecycle transition lives in [PlaylistRepository.MarkTransmitted]: a
// compare-and-swap UPDATE that only moves a playlist from draft to transmitted
// once, regardless of concurrent build attempts.
//
// Sequence numbers provide stable, human-readable ordering (e.g., playlist #15, build #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
