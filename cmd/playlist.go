package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate persists a draft playlist from a JSON payload file.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var payload models.PlaylistPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: input file is not a playlist payload: %v", shared.ErrValidation, err)
	}

	playlist, err := engine.CreatePlaylist(cmd.String("owner"), payload)
	if err != nil {
		return err
	}

	r.writePlain("✓ Draft playlist created\n")
	r.writePlain("  ID: %s\n", playlist.ID())
	r.writePlain("  Name: %s\n", playlist.Name())
	r.writePlain("  Tracks: %d\n", len(playlist.Tracks()))
	return nil
}

// PlaylistList prints the owner's stored playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	playlists, err := engine.ListPlaylists(cmd.String("owner"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]models.PlaylistView, 0, len(playlists))
		for _, playlist := range playlists {
			views = append(views, playlist.View())
		}
		return r.writeJSON(views, true)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, playlist := range playlists {
		r.writePlain("%d. %s\n", i+1, playlist.Name())
		r.writePlain("   ID: %s\n", playlist.ID())
		r.writePlain("   Status: %s\n", playlist.Status())
		r.writePlain("   Tracks: %d\n", len(playlist.Tracks()))
		if playlist.ProviderID() != "" {
			r.writePlain("   Provider ID: %s\n", playlist.ProviderID())
		}
		r.writePlain("\n")
	}

	return nil
}

// PlaylistShow prints a single stored playlist.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a playlist id argument is required", shared.ErrValidation)
	}

	playlist, err := engine.GetPlaylist(cmd.String("owner"), id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist.View(), true)
	}

	text, err := formatter.ExportToText(playlist.View())
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// PlaylistUpdate replaces a draft playlist's payload from a JSON file.
func (r *Runner) PlaylistUpdate(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a playlist id argument is required", shared.ErrValidation)
	}

	data, err := os.ReadFile(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var payload models.PlaylistPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: input file is not a playlist payload: %v", shared.ErrValidation, err)
	}

	playlist, err := engine.UpdatePlaylist(cmd.String("owner"), id, payload)
	if err != nil {
		return err
	}

	r.writePlain("✓ Playlist updated\n")
	r.writePlain("  ID: %s\n", playlist.ID())
	r.writePlain("  Name: %s\n", playlist.Name())
	r.writePlain("  Tracks: %d\n", len(playlist.Tracks()))
	return nil
}

// PlaylistDelete removes a draft playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a playlist id argument is required", shared.ErrValidation)
	}

	if err := engine.DeletePlaylist(cmd.String("owner"), id); err != nil {
		return err
	}

	r.writePlain("✓ Playlist %s deleted\n", id)
	return nil
}

// PlaylistExport writes a stored playlist to CSV, Markdown, or plain text.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: a playlist id argument is required", shared.ErrValidation)
	}

	playlist, err := engine.GetPlaylist(cmd.String("owner"), id)
	if err != nil {
		return err
	}
	view := playlist.View()
	output := cmd.String("output")

	switch format := cmd.String("format"); format {
	case "csv":
		result, err := formatter.WriteCSVExport(view, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Playlist exported\n")
		r.writePlain("  Tracks: %s\n", result.TracksFile)
		r.writePlain("  Metadata: %s\n", result.MetadataFile)
	case "markdown", "md":
		file, err := formatter.WriteMarkdownExport(view, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Playlist exported to %s\n", file)
	case "text":
		file, err := formatter.WriteTextExport(view, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Playlist exported to %s\n", file)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrValidation, format)
	}

	return nil
}
