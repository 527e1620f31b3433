package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// APIHandler serves the playlist pipeline over HTTP.
//
// All routes except /health require the caller's owner identifier, which the
// [RequireOwner] middleware extracts from the request header.
type APIHandler struct {
	engine *tasks.PipelineEngine
	verify tasks.VerifyOpts
	logger *log.Logger
}

// NewAPIHandler creates the handler around a pipeline engine. Verification
// limits come from configuration; zero values fall back to the engine defaults.
func NewAPIHandler(engine *tasks.PipelineEngine, verify shared.VerifyConfig, logger *log.Logger) *APIHandler {
	return &APIHandler{
		engine: engine,
		verify: tasks.VerifyOpts{
			MaxBatch:  verify.MaxBatch,
			Workers:   verify.Workers,
			RateLimit: verify.RateLimit,
		},
		logger: logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return []string{"/playlists", "/playlists/", "/builds"}
}

// ServeHTTP dispatches by method and path.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/playlists" && r.Method == http.MethodPost:
		h.createPlaylist(w, r)
	case path == "/playlists" && r.Method == http.MethodGet:
		h.listPlaylists(w, r)
	case path == "/playlists/generate" && r.Method == http.MethodPost:
		h.generate(w, r)
	case path == "/playlists/verify" && r.Method == http.MethodPost:
		h.verifyTracks(w, r)
	case path == "/playlists/build" && r.Method == http.MethodPost:
		h.build(w, r)
	case path == "/builds" && r.Method == http.MethodGet:
		h.listBuilds(w, r)
	case strings.HasPrefix(path, "/playlists/"):
		h.playlistByID(w, r, strings.TrimPrefix(path, "/playlists/"))
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

func (h *APIHandler) playlistByID(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}

	owner := OwnerFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		playlist, err := h.engine.GetPlaylist(owner, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, playlist.View())
	case http.MethodPatch:
		var payload models.PlaylistPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		playlist, err := h.engine.UpdatePlaylist(owner, id, payload)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, playlist.View())
	case http.MethodDelete:
		if err := h.engine.DeletePlaylist(owner, id); err != nil {
			h.writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *APIHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req services.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlist, err := h.engine.Generate(r.Context(), nil, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

func (h *APIHandler) verifyTracks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tracks []models.CandidateTrack `json:"tracks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.engine.Verify(r.Context(), nil, req.Tracks, h.verify)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *APIHandler) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var payload models.PlaylistPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	playlist, err := h.engine.CreatePlaylist(OwnerFromContext(r.Context()), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlist.View())
}

func (h *APIHandler) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.engine.ListPlaylists(OwnerFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]models.PlaylistView, 0, len(playlists))
	for _, playlist := range playlists {
		views = append(views, playlist.View())
	}

	writeJSON(w, http.StatusOK, views)
}

// buildResponse is the build endpoint's payload.
type buildResponse struct {
	Playlist     models.PlaylistView `json:"playlist"`
	Record       *models.BuildView   `json:"record,omitempty"`
	AlreadyBuilt bool                `json:"already_built"`
}

func (h *APIHandler) build(w http.ResponseWriter, r *http.Request) {
	var req models.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.engine.Build(r.Context(), nil, OwnerFromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := buildResponse{
		Playlist:     result.Playlist.View(),
		AlreadyBuilt: result.AlreadyBuilt,
	}
	if result.Record != nil {
		view := result.Record.View()
		response.Record = &view
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *APIHandler) listBuilds(w http.ResponseWriter, r *http.Request) {
	records, err := h.engine.ListBuilds(OwnerFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]models.BuildView, 0, len(records))
	for _, record := range records {
		views = append(views, record.View())
	}

	writeJSON(w, http.StatusOK, views)
}

// writeError maps the error taxonomy onto HTTP status codes.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, shared.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrGeneration), errors.Is(err, shared.ErrProviderPublish):
		status = http.StatusBadGateway
	case errors.Is(err, shared.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError && h.logger != nil {
		h.logger.Error("unhandled error", "error", err)
	}

	writeJSONError(w, status, err.Error())
}

// HealthHandler reports service liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
