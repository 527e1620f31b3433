package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/formatter"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Generate asks the generator for candidate tracks and prints or saves them.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		return fmt.Errorf("%w: a prompt argument is required", shared.ErrValidation)
	}

	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	r.logger.Info("generating candidates", "prompt", prompt)

	playlist, err := engine.Generate(ctx, nil, services.GenerationRequest{
		Prompt:  prompt,
		Count:   cmd.Int("count"),
		Artists: cmd.String("artists"),
	})
	if err != nil {
		return err
	}

	if outputFile := cmd.String("output"); outputFile != "" {
		data, err := json.MarshalIndent(playlist, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal playlist: %w", err)
		}
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		r.writePlain("✓ Generated playlist saved to %s\n", outputFile)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}

	r.writePlain("%s\n", playlist.Title)
	if playlist.Description != "" {
		r.writePlain("%s\n", playlist.Description)
	}
	r.writePlain("\n")
	for i, track := range playlist.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
		if track.Album != "" {
			r.writePlain("   Album: %s\n", track.Album)
		}
	}

	return nil
}

// Verify reconciles candidate tracks against the catalog and reports the outcome.
//
// Candidates come from a generated-playlist JSON file or, with --prompt, from
// a fresh generation.
func (r *Runner) Verify(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}

	if err := r.ensureSpotifyAuth(ctx); err != nil {
		return err
	}

	playlist, err := r.loadCandidates(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("verifying candidates", "count", len(playlist.Tracks))

	response, err := engine.Verify(ctx, nil, playlist.Tracks, r.verifyOpts())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(response, true)
	}

	return r.writePlain("%s", formatter.VerificationReport(response))
}

// loadCandidates resolves the verification input from --input or --prompt.
func (r *Runner) loadCandidates(ctx context.Context, cmd *cli.Command) (*models.GeneratedPlaylist, error) {
	inputFile := cmd.String("input")
	prompt := cmd.String("prompt")

	switch {
	case inputFile != "" && prompt != "":
		return nil, fmt.Errorf("%w: --input and --prompt are mutually exclusive", shared.ErrValidation)
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		var playlist models.GeneratedPlaylist
		if err := json.Unmarshal(data, &playlist); err != nil {
			return nil, fmt.Errorf("%w: input file is not a generated playlist: %v", shared.ErrValidation, err)
		}
		return &playlist, nil
	case prompt != "":
		engine, err := r.pipeline()
		if err != nil {
			return nil, err
		}
		return engine.Generate(ctx, nil, services.GenerationRequest{Prompt: prompt})
	default:
		return nil, fmt.Errorf("%w: one of --input or --prompt is required", shared.ErrValidation)
	}
}
