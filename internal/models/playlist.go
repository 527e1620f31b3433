package models

import (
	"fmt"
	"time"
)

// PlaylistStatus is the lifecycle state of a persisted playlist.
type PlaylistStatus string

const (
	// StatusDraft marks a playlist that is still editable and unpublished.
	StatusDraft PlaylistStatus = "draft"
	// StatusTransmitted marks a playlist that has been published to a provider.
	// Transmitted playlists are immutable.
	StatusTransmitted PlaylistStatus = "transmitted"
)

// PlaylistPayload is the create/update request body for playlists.
type PlaylistPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Public      bool    `json:"public"`
	Tracks      []Track `json:"tracks"`
}

// Validate checks the payload fields.
func (p PlaylistPayload) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("playlist name exceeds 200 characters")
	}
	return nil
}

// BuildRequest selects the playlist a build operates on: exactly one of an
// existing playlist id or an inline creation payload.
type BuildRequest struct {
	PlaylistID   string           `json:"playlist_id,omitempty"`
	PlaylistData *PlaylistPayload `json:"playlist_data,omitempty"`
}

// BuildMode identifies which branch of the [BuildRequest] union applies.
type BuildMode int

const (
	BuildByID BuildMode = iota
	BuildByData
)

// Mode validates the union exhaustively and returns the selected branch.
// Providing both or neither field is a validation error.
func (r BuildRequest) Mode() (BuildMode, error) {
	switch {
	case r.PlaylistID != "" && r.PlaylistData != nil:
		return 0, fmt.Errorf("playlist_id and playlist_data are mutually exclusive")
	case r.PlaylistID != "":
		return BuildByID, nil
	case r.PlaylistData != nil:
		return BuildByData, nil
	default:
		return 0, fmt.Errorf("one of playlist_id or playlist_data is required")
	}
}

// Playlist is a persisted, owned playlist with lifecycle state.
//
// A playlist is created in draft status, may be edited by its owner while in
// draft, and transitions to transmitted exactly once when published to an
// external provider. The id is assigned once at creation and never reused.
type Playlist struct {
	id          string
	sequence    int
	ownerID     string
	name        string
	description string
	public      bool
	status      PlaylistStatus
	provider    string
	providerID  string
	tracks      []Track
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewPlaylist creates a draft playlist for the given owner from a payload.
// The database id is assigned later by the repository.
func NewPlaylist(sequence int, ownerID string, payload PlaylistPayload) *Playlist {
	now := time.Now()
	return &Playlist{
		sequence:    sequence,
		ownerID:     ownerID,
		name:        payload.Name,
		description: payload.Description,
		public:      payload.Public,
		status:      StatusDraft,
		tracks:      payload.Tracks,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (p *Playlist) ID() string              { return p.id }
func (p *Playlist) Sequence() int           { return p.sequence }
func (p *Playlist) OwnerID() string         { return p.ownerID }
func (p *Playlist) Name() string            { return p.name }
func (p *Playlist) Description() string     { return p.description }
func (p *Playlist) Public() bool            { return p.public }
func (p *Playlist) Status() PlaylistStatus  { return p.status }
func (p *Playlist) Provider() string        { return p.provider }
func (p *Playlist) ProviderID() string      { return p.providerID }
func (p *Playlist) Tracks() []Track         { return p.tracks }
func (p *Playlist) CreatedAt() time.Time    { return p.createdAt }
func (p *Playlist) UpdatedAt() time.Time    { return p.updatedAt }
func (p *Playlist) DeletedAt() *time.Time   { return p.deletedAt }

func (p *Playlist) SetID(id string)           { p.id = id }
func (p *Playlist) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *Playlist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *Playlist) SetDeletedAt(t *time.Time) { p.deletedAt = t }
func (p *Playlist) SetTracks(tracks []Track)  { p.tracks = tracks }

// ApplyPayload overwrites the editable fields from a payload.
// Callers must check the draft status first; the entity does not know
// whether the mutation is part of a valid transition.
func (p *Playlist) ApplyPayload(payload PlaylistPayload) {
	p.name = payload.Name
	p.description = payload.Description
	p.public = payload.Public
	p.tracks = payload.Tracks
}

// SetTransmitted records a successful publish: status, provider, and the
// provider's playlist identifier move together so the entity never holds a
// provider id without transmitted status or vice versa.
func (p *Playlist) SetTransmitted(provider, providerID string) {
	p.status = StatusTransmitted
	p.provider = provider
	p.providerID = providerID
}

// Validate checks the playlist invariants.
func (p *Playlist) Validate() error {
	if p.name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if p.ownerID == "" {
		return fmt.Errorf("playlist owner is required")
	}
	switch p.status {
	case StatusDraft:
		if p.providerID != "" {
			return fmt.Errorf("draft playlist must not have a provider id")
		}
	case StatusTransmitted:
		if p.providerID == "" {
			return fmt.Errorf("transmitted playlist must have a provider id")
		}
		if len(p.tracks) == 0 {
			return fmt.Errorf("transmitted playlist must not be empty")
		}
	default:
		return fmt.Errorf("unknown playlist status: %s", p.status)
	}
	return nil
}

// PlaylistView is the wire representation of a playlist.
type PlaylistView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Public      bool           `json:"public"`
	Status      PlaylistStatus `json:"status"`
	Provider    string         `json:"provider,omitempty"`
	ProviderID  string         `json:"provider_id,omitempty"`
	Tracks      []Track        `json:"tracks"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// View renders the playlist for API responses and CLI output.
func (p *Playlist) View() PlaylistView {
	return PlaylistView{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Public:      p.public,
		Status:      p.status,
		Provider:    p.provider,
		ProviderID:  p.providerID,
		Tracks:      p.tracks,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}
