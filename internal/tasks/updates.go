package tasks

import (
	"fmt"

	"github.com/desertthunder/mixtape/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Generating Phase = iota
	Verifying
	Persisting
	Publishing
	Recording
)

func (p Phase) String() string {
	switch p {
	case Generating:
		return "generating"
	case Verifying:
		return "verifying"
	case Persisting:
		return "persisting"
	case Publishing:
		return "publishing"
	case Recording:
		return "recording"
	default:
		return ""
	}
}

func generatingUpdate(prompt string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Generating,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generating playlist for %q...", prompt),
	}
}

func generatedUpdate(playlist *models.GeneratedPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Generating,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Generated %q (%d candidates)", playlist.Title, len(playlist.Tracks)),
		Data:    playlist,
	}
}

func verifyingUpdate(step, total int, candidate *models.CandidateTrack) ProgressUpdate {
	if candidate == nil {
		return ProgressUpdate{
			Phase:   Verifying,
			Step:    step,
			Total:   total,
			Message: "Verifying candidates against the catalog...",
		}
	}
	return ProgressUpdate{
		Phase:   Verifying,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, candidate.Label()),
	}
}

func verifiedUpdate(verified, rejected int) ProgressUpdate {
	total := verified + rejected
	return ProgressUpdate{
		Phase:   Verifying,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Verified %d of %d candidates", verified, total),
	}
}

func persistingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persisting,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving draft %q...", name),
	}
}

func publishingUpdate(playlist *models.Playlist, providerName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Publishing,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Publishing %q to %s...", playlist.Name(), providerName),
	}
}

func publishedUpdate(playlist *models.Playlist, providerID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Recording,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Published %q (provider ID: %s)", playlist.Name(), providerID),
		Data:    playlist,
	}
}
