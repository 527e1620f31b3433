package models

import "fmt"

// Track represents a catalog-confirmed song.
//
// ID holds the catalog identifier when known (e.g. a Spotify track ID) and is
// required for publishing without a fallback lookup. Identity for matching
// purposes is the normalized (artist, title) pair; duration and version are
// disambiguators only.
type Track struct {
	ID         string `json:"id,omitempty"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Album      string `json:"album,omitempty"`
	Version    string `json:"version,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

// CandidateTrack represents a track as proposed by the generator.
//
// Candidates are unverified and may carry hallucinated or malformed metadata;
// they only become a [Track] after catalog verification.
type CandidateTrack struct {
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	Album      string `json:"album,omitempty"`
	Version    string `json:"version,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

// Label returns the human-readable "artist – title" form of the candidate,
// built from the original metadata before any normalization.
//
// Both sides are kept verbatim even when empty (e.g. "Some Artist – "), so
// rejected entries remain recognizable and stable for display.
func (c CandidateTrack) Label() string {
	return fmt.Sprintf("%s – %s", c.Artist, c.Title)
}

// GeneratedPlaylist is the generator's proposal for a prompt: a title,
// an optional description, and an ordered list of candidate tracks.
type GeneratedPlaylist struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Tracks      []CandidateTrack `json:"tracks"`
}

// VerificationResponse partitions a candidate batch into catalog-verified
// tracks and rejected labels.
//
// Verified tracks preserve the relative order of their source candidates.
// Rejected entries hold [CandidateTrack.Label] strings.
type VerificationResponse struct {
	Verified []Track  `json:"verified"`
	Rejected []string `json:"rejected"`
}

// VerificationOutcome is the per-candidate result of matching against the catalog.
//
// Exactly one of the two branches applies: a verified outcome carries the
// catalog-confirmed track, a rejected outcome carries the candidate's label.
type VerificationOutcome struct {
	Verified bool
	Track    Track
	Label    string
}

// VerifiedOutcome constructs an accepted outcome carrying the catalog track.
func VerifiedOutcome(track Track) VerificationOutcome {
	return VerificationOutcome{Verified: true, Track: track}
}

// RejectedOutcome constructs a rejected outcome carrying the candidate label.
func RejectedOutcome(label string) VerificationOutcome {
	return VerificationOutcome{Label: label}
}
