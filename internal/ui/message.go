package ui

import (
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// verifiedMsg reports the generate+verify pipeline finishing.
type verifiedMsg struct {
	playlist *models.GeneratedPlaylist
	response *models.VerificationResponse
	err      error
}

// progressUpdateMsg carries one engine progress update into the event loop.
type progressUpdateMsg tasks.ProgressUpdate

// buildCompleteMsg reports the build finishing.
type buildCompleteMsg struct {
	result *tasks.BuildResult
	err    error
}
