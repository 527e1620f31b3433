package main

import (
	"context"
	"os"

	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotify *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotify = svc
		}
	}

	var generator services.Generator
	if config.Credentials.Generator.APIKey != "" {
		generator = services.NewOpenAIGenerator(config.Credentials.Generator)
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Generator: generator,
		Spotify:   spotify,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "mixtape",
		Usage:    "Generate, verify, and publish playlists from a prompt",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
