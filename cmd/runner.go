package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/desertthunder/mixtape/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	generator services.Generator
	spotify   *services.SpotifyService
	logger    *log.Logger
	output    io.Writer
	db        *sql.DB
	engine    *tasks.PipelineEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Generator services.Generator
	Spotify   *services.SpotifyService
	Logger    *log.Logger
	Output    io.Writer
	DB        *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:    opts.Config,
		generator: opts.Generator,
		spotify:   opts.Spotify,
		logger:    opts.Logger,
		output:    opts.Output,
		db:        opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, generateCommand, verifyCommand,
		playlistCommand, buildCommand, tracksCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// pipeline lazily assembles the engine over the configured database. The
// catalog and provider are both the Spotify service; verified tracks are
// recorded to the database as batches complete.
func (r *Runner) pipeline() (*tasks.PipelineEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	var catalog services.Catalog
	var provider services.Provider
	if r.spotify != nil {
		catalog = r.spotify
		provider = r.spotify
	}

	engine := tasks.NewPipelineEngine(
		r.generator,
		catalog,
		provider,
		repositories.NewPlaylistRepository(db),
		repositories.NewBuildRepository(db),
		r.config.Timeouts,
	)
	engine.SetTrackRecorder(repositories.NewTrackRepository(db))

	r.engine = engine
	return engine, nil
}

func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	return db, nil
}

// verifyOpts maps the configured verification limits onto engine options.
func (r *Runner) verifyOpts() tasks.VerifyOpts {
	return tasks.VerifyOpts{
		MaxBatch:  r.config.Verify.MaxBatch,
		Workers:   r.config.Verify.Workers,
		RateLimit: r.config.Verify.RateLimit,
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
