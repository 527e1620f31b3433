// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func ownerFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "owner",
		Usage:   "Owner identifier for playlists and builds",
		Value:   "local",
		Sources: cli.EnvVars("MIXTAPE_OWNER"),
	}
}

// setupCommand handles database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles Spotify authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// generateCommand turns a prompt into candidate tracks.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate candidate tracks from a prompt",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "prompt"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "Number of candidate tracks to request",
			},
			&cli.StringFlag{
				Name:  "artists",
				Usage: "Comma-separated artist hint",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Save the generated playlist to a JSON file",
			},
		},
		Action: r.Generate,
	}
}

// verifyCommand reconciles candidates against the catalog.
func verifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify candidate tracks against the Spotify catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "JSON file containing a generated playlist",
			},
			&cli.StringFlag{
				Name:  "prompt",
				Usage: "Generate candidates from a prompt instead of a file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Verify,
	}
}

// playlistCommand manages stored playlists.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage stored playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a draft playlist from a verified JSON file",
				Flags: []cli.Flag{
					ownerFlag(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON file containing the playlist payload",
						Required: true,
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:   "list",
				Usage:  "List stored playlists",
				Flags:  []cli.Flag{ownerFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a stored playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{ownerFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.PlaylistShow,
			},
			{
				Name:  "update",
				Usage: "Replace a draft playlist's payload",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					ownerFlag(),
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON file containing the playlist payload",
						Required: true,
					},
				},
				Action: r.PlaylistUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a draft playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{ownerFlag()},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "export",
				Usage: "Export a stored playlist to CSV, Markdown, or plain text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					ownerFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, or text",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (defaults to the playlist id)",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// buildCommand publishes playlists to the provider.
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Publish playlists to Spotify",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Publish a stored draft playlist, or an inline payload with --input",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					ownerFlag(),
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "JSON file containing a playlist payload to create and publish",
					},
				},
				Action: r.BuildRun,
			},
			{
				Name:  "pipeline",
				Usage: "Run the full prompt-to-published-playlist pipeline",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "prompt"},
				},
				Flags: []cli.Flag{
					ownerFlag(),
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of candidate tracks to request",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the published playlist public",
					},
				},
				Action: r.BuildPipeline,
			},
			{
				Name:   "list",
				Usage:  "List build attempts",
				Flags:  []cli.Flag{ownerFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.BuildList,
			},
		},
	}
}

// tracksCommand inspects the local record of verified tracks.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Inspect the local record of catalog-verified tracks",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Look up a verified track by artist and title",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Track title",
						Required: true,
					},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.TracksGet,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive terminal interface.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive playlist builder",
		Flags:   []cli.Flag{ownerFlag()},
		Action:  r.TUI,
	}
}
