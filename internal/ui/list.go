package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
)

var _ list.Item = reviewItem{}

// reviewItem wraps a verified [models.Track] with its inclusion state for the
// review list. Toggled-off tracks stay visible but are excluded from the build.
type reviewItem struct {
	track    models.Track
	included bool
}

func (i reviewItem) FilterValue() string { return i.track.Title }

func (i reviewItem) Title() string {
	marker := "[x]"
	if !i.included {
		marker = "[ ]"
	}
	return fmt.Sprintf("%s %s", marker, i.track.Title)
}

func (i reviewItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.DurationMS > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.DurationMS))
	}
	return desc
}
