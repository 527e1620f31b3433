package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mixtape/internal/match"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// TracksGet looks up a previously verified track in the local record.
func (r *Runner) TracksGet(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	provider := "spotify"
	if r.spotify != nil {
		provider = r.spotify.Name()
	}
	key := match.Normalize(cmd.String("artist")) + "|" + match.Normalize(cmd.String("title"))

	track, err := repositories.NewTrackRepository(db).Get(provider, key)
	if err != nil {
		return fmt.Errorf("lookup for %s / %s failed: %w", cmd.String("artist"), cmd.String("title"), err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, true)
	}

	r.writePlain("✓ Verified track on record\n")
	r.writePlain("  ID: %s\n", track.ID)
	r.writePlain("  Title: %s\n", track.Title)
	r.writePlain("  Artist: %s\n", track.Artist)
	if track.Album != "" {
		r.writePlain("  Album: %s\n", track.Album)
	}
	r.writePlain("  Duration: %s\n", shared.FormatDuration(track.DurationMS))
	return nil
}
