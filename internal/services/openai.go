// OpenAI-compatible chat-completions implementation of [Generator]
//
// Works against any endpoint speaking the /chat/completions wire format,
// so local inference servers can stand in for the hosted API.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

const (
	defaultGeneratorBaseURL = "https://api.openai.com/v1"
	defaultGeneratorModel   = "gpt-4o-mini"
	defaultCandidateCount   = 10
	maxCandidateCount       = 50
)

const generatorSystemPrompt = `You are a music curator. Given a mood or theme, respond with a playlist as a single JSON object:
{"title": string, "description": string, "tracks": [{"artist": string, "track": string, "album": string}]}
Only real, released recordings. No commentary outside the JSON.`

// OpenAIGenerator implements [Generator] against an OpenAI-compatible API.
type OpenAIGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIGenerator creates a generator client from config.
func NewOpenAIGenerator(cfg shared.GeneratorConfig) *OpenAIGenerator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeneratorBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeneratorModel
	}

	return &OpenAIGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: http.DefaultClient,
	}
}

// Name returns the generator backend name.
func (g *OpenAIGenerator) Name() string {
	return "OpenAI"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// generatedTrack tolerates both "title" and the legacy "track" key for the
// track name, since models drift between the two.
type generatedTrack struct {
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	TrackName  string `json:"track"`
	Album      string `json:"album"`
	Version    string `json:"version"`
	DurationMS int    `json:"duration_ms"`
}

type generatedPayload struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Tracks      []generatedTrack `json:"tracks"`
}

// Generate asks the model for a playlist proposal and parses its JSON reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerationRequest) (*models.GeneratedPlaylist, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", shared.ErrValidation)
	}

	count := req.Count
	if count <= 0 {
		count = defaultCandidateCount
	}
	if count > maxCandidateCount {
		count = maxCandidateCount
	}

	userPrompt := fmt.Sprintf("Theme: %s\nNumber of tracks: %d", req.Prompt, count)
	if req.Artists != "" {
		userPrompt += fmt.Sprintf("\nLean on these artists where it fits: %s", req.Artists)
	}

	completion := chatCompletionRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: generatorSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	var response chatCompletionResponse
	if err := g.doRequest(ctx, completion, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGeneration, err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", shared.ErrGeneration)
	}

	playlist, err := parseGeneratedPlaylist(response.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGeneration, err)
	}

	if len(playlist.Tracks) > count {
		playlist.Tracks = playlist.Tracks[:count]
	}

	return playlist, nil
}

func (g *OpenAIGenerator) doRequest(ctx context.Context, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	apiURL := g.baseURL + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("generator API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("generator API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseGeneratedPlaylist extracts the playlist JSON from the model's reply,
// tolerating markdown code fences around the object.
func parseGeneratedPlaylist(content string) (*models.GeneratedPlaylist, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload generatedPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}

	if len(payload.Tracks) == 0 {
		return nil, fmt.Errorf("model output contains no tracks")
	}

	playlist := &models.GeneratedPlaylist{
		Title:       payload.Title,
		Description: payload.Description,
		Tracks:      make([]models.CandidateTrack, 0, len(payload.Tracks)),
	}
	if playlist.Title == "" {
		playlist.Title = "Untitled Playlist"
	}

	for _, track := range payload.Tracks {
		title := track.Title
		if title == "" {
			title = track.TrackName
		}
		playlist.Tracks = append(playlist.Tracks, models.CandidateTrack{
			Artist:     track.Artist,
			Title:      title,
			Album:      track.Album,
			Version:    track.Version,
			DurationMS: track.DurationMS,
		})
	}

	return playlist, nil
}
