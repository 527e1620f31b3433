package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// BuildRun publishes a stored draft playlist to the provider.
func (r *Runner) BuildRun(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}
	if err := r.ensureSpotifyAuth(ctx); err != nil {
		return err
	}

	// The id argument and --input are the two branches of the build union;
	// the engine rejects both or neither.
	request := models.BuildRequest{PlaylistID: cmd.StringArg("id")}
	if inputFile := cmd.String("input"); inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		var payload models.PlaylistPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("%w: input file is not a playlist payload: %v", shared.ErrValidation, err)
		}
		request.PlaylistData = &payload
	}

	progress, done := r.printProgress()
	result, err := engine.Build(ctx, progress, cmd.String("owner"), request)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.printBuildResult(result)
	return nil
}

// BuildPipeline runs generate, verify, persist, and publish in one shot.
func (r *Runner) BuildPipeline(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}
	if err := r.ensureSpotifyAuth(ctx); err != nil {
		return err
	}

	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		return fmt.Errorf("%w: a prompt argument is required", shared.ErrValidation)
	}

	progress, done := r.printProgress()
	defer func() {
		close(progress)
		<-done
	}()

	playlist, err := engine.Generate(ctx, progress, services.GenerationRequest{
		Prompt: prompt,
		Count:  cmd.Int("count"),
	})
	if err != nil {
		return err
	}

	response, err := engine.Verify(ctx, progress, playlist.Tracks, r.verifyOpts())
	if err != nil {
		return err
	}
	if len(response.Verified) == 0 {
		return fmt.Errorf("%w: no candidate tracks could be verified", shared.ErrValidation)
	}
	for _, label := range response.Rejected {
		r.writePlain("  ✗ not in catalog: %s\n", label)
	}

	result, err := engine.Build(ctx, progress, cmd.String("owner"), models.BuildRequest{
		PlaylistData: &models.PlaylistPayload{
			Name:        playlist.Title,
			Description: playlist.Description,
			Public:      cmd.Bool("public"),
			Tracks:      response.Verified,
		},
	})
	if err != nil {
		return err
	}

	r.printBuildResult(result)
	return nil
}

// BuildList prints the owner's build history.
func (r *Runner) BuildList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	records, err := engine.ListBuilds(cmd.String("owner"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]models.BuildView, 0, len(records))
		for _, record := range records {
			views = append(views, record.View())
		}
		return r.writeJSON(views, true)
	}

	r.writePlain("Found %d build attempts:\n\n", len(records))
	for i, record := range records {
		r.writePlain("%d. %s\n", i+1, record.ID())
		r.writePlain("   Playlist: %s\n", record.PlaylistID())
		r.writePlain("   Status: %s\n", record.Status())
		if record.ProviderID() != "" {
			r.writePlain("   Provider ID: %s\n", record.ProviderID())
		}
		if record.ErrorMessage() != "" {
			r.writePlain("   Error: %s\n", record.ErrorMessage())
		}
		r.writePlain("\n")
	}

	return nil
}

// printProgress drains pipeline progress updates to the output writer.
// The caller must close the returned channel and wait on done.
func (r *Runner) printProgress() (chan tasks.ProgressUpdate, <-chan struct{}) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("[%s] %s\n", update.Phase, update.Message)
		}
	}()
	return progress, done
}

func (r *Runner) printBuildResult(result *tasks.BuildResult) {
	if result.AlreadyBuilt {
		r.writePlain("✓ Playlist already published\n")
	} else {
		r.writePlain("✓ Playlist published\n")
	}
	r.writePlain("  ID: %s\n", result.Playlist.ID())
	r.writePlain("  Name: %s\n", result.Playlist.Name())
	r.writePlain("  Provider ID: %s\n", result.Playlist.ProviderID())
	r.writePlain("  Tracks: %d\n", len(result.Playlist.Tracks()))
}
