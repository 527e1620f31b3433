// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
)

// MockGenerator is a test double for [services.Generator]
type MockGenerator struct {
	Playlist *models.GeneratedPlaylist
	Err      error
	Calls    int
}

func (m *MockGenerator) Generate(ctx context.Context, req services.GenerationRequest) (*models.GeneratedPlaylist, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &models.GeneratedPlaylist{
		Title: "Generated Playlist",
		Tracks: []models.CandidateTrack{
			{Artist: "Test Artist", Title: "Test Track"},
		},
	}, nil
}

func (m *MockGenerator) Name() string { return "mock-generator" }

// MockCatalog is a test double for [services.Catalog]. Results is keyed by
// "artist|title" as submitted; unkeyed lookups return Fallback.
type MockCatalog struct {
	Results  map[string][]models.Track
	Fallback []models.Track
	Err      error
	Calls    int
}

func (m *MockCatalog) Search(ctx context.Context, artist, title string) ([]models.Track, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if tracks, ok := m.Results[artist+"|"+title]; ok {
		return tracks, nil
	}
	return m.Fallback, nil
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

// MockProvider is a test double for [services.Provider]
type MockProvider struct {
	ProviderID string
	Err        error
	Published  []*models.Playlist
}

func (m *MockProvider) Publish(ctx context.Context, playlist *models.Playlist) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Published = append(m.Published, playlist)
	if m.ProviderID != "" {
		return m.ProviderID, nil
	}
	return "provider-playlist-id", nil
}

func (m *MockProvider) Name() string { return "mock-provider" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoutingRoundTripper dispatches by request path substring, for tests that
// exercise multi-endpoint flows through one http.Client.
type RoutingRoundTripper struct {
	Routes   map[string]func(*http.Request) (*http.Response, error)
	Fallback func(*http.Request) (*http.Response, error)
	Requests []*http.Request
}

func (r *RoutingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r.Requests = append(r.Requests, req)
	for fragment, handler := range r.Routes {
		if strings.Contains(req.URL.Path, fragment) {
			return handler(req)
		}
	}
	if r.Fallback != nil {
		return r.Fallback(req)
	}
	return nil, errors.New("no route for " + req.URL.Path)
}

// JSONResponse builds an *http.Response with a JSON string body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
