// Spotify implementation of [Catalog] and [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps track additions at 100 URIs per request.
	spotifyTrackBatchSize = 100

	searchResultLimit = 10
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyCreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
}

type spotifyCreatePlaylistResponse struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

type spotifyAddTracksRequest struct {
	URIs []string `json:"uris"`
}

// SpotifyService implements [Catalog] and [Provider] against the Spotify API.
// Uses [oauth2] for authentication and provides search and playlist creation.
type SpotifyService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	credentials map[string]string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// SetToken installs an existing OAuth token, e.g. one restored from config.
func (s *SpotifyService) SetToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// OAuthConfig exposes the OAuth2 config for callback-server flows.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := spotifyBaseURL + endpoint

	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &spotifyStatusError{status: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// spotifyStatusError carries the HTTP status for error classification.
type spotifyStatusError struct {
	status int
}

func (e *spotifyStatusError) Error() string {
	return fmt.Sprintf("spotify API error: status %d", e.status)
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Catalog interface implementation

// Search queries the Spotify search endpoint for the artist/title pair and
// returns ranked results in Spotify's order.
func (s *SpotifyService) Search(ctx context.Context, artist, title string) ([]models.Track, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), searchResultLimit)

	var response spotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, classifyCatalogError(err)
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, spotifyToTrack(item))
	}

	return tracks, nil
}

// classifyCatalogError maps transport failures onto the catalog error taxonomy.
func classifyCatalogError(err error) error {
	var statusErr *spotifyStatusError
	if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound {
		return fmt.Errorf("%w: %v", shared.ErrCatalogNotFound, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrCatalogTransient, err)
}

func spotifyToTrack(item SpotifyTrack) models.Track {
	track := models.Track{
		ID:         item.ID,
		Title:      item.Name,
		Album:      item.Album.Name,
		DurationMS: item.DurationMS,
	}
	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}
	return track
}

// Provider interface implementation

// Publish creates the playlist on Spotify and adds its tracks in batches.
// Tracks without a catalog id are resolved with a search fallback; tracks that
// still cannot be resolved are skipped, but a playlist that resolves no tracks
// at all is a publish failure.
func (s *SpotifyService) Publish(ctx context.Context, playlist *models.Playlist) (string, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: failed to resolve user: %v", shared.ErrProviderPublish, err)
	}

	uris := make([]string, 0, len(playlist.Tracks()))
	for _, track := range playlist.Tracks() {
		uri := s.trackURI(ctx, track)
		if uri != "" {
			uris = append(uris, uri)
		}
	}

	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no tracks could be resolved", shared.ErrProviderPublish)
	}

	createReq := spotifyCreatePlaylistRequest{
		Name:        playlist.Name(),
		Description: playlist.Description(),
		Public:      playlist.Public(),
	}

	var created spotifyCreatePlaylistResponse
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user.ID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, createReq, &created); err != nil {
		return "", fmt.Errorf("%w: failed to create playlist: %v", shared.ErrProviderPublish, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: provider returned no playlist id", shared.ErrProviderPublish)
	}

	addEndpoint := fmt.Sprintf("/playlists/%s/tracks", created.ID)
	for start := 0; start < len(uris); start += spotifyTrackBatchSize {
		end := start + spotifyTrackBatchSize
		if end > len(uris) {
			end = len(uris)
		}

		addReq := spotifyAddTracksRequest{URIs: uris[start:end]}
		if err := s.doRequest(ctx, http.MethodPost, addEndpoint, addReq, nil); err != nil {
			return "", fmt.Errorf("%w: failed to add tracks: %v", shared.ErrProviderPublish, err)
		}
	}

	return created.ID, nil
}

// trackURI resolves a track to a Spotify URI, searching when the catalog id
// is missing.
func (s *SpotifyService) trackURI(ctx context.Context, track models.Track) string {
	if track.ID != "" {
		return "spotify:track:" + track.ID
	}

	results, err := s.Search(ctx, track.Artist, track.Title)
	if err != nil || len(results) == 0 {
		return ""
	}
	return "spotify:track:" + results[0].ID
}
