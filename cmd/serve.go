package main

import (
	"context"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP API on the configured address.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.pipeline()
	if err != nil {
		return err
	}
	if r.spotify != nil {
		if err := r.ensureSpotifyAuth(ctx); err != nil {
			r.logger.Warnf("spotify authentication unavailable: %v", err)
		}
	}

	cfg := r.config.Server
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}

	api := server.NewAPIHandler(engine, r.config.Verify, r.logger)
	router := server.NewRouter(api, r.logger)
	srv := server.New(cfg, router)

	r.logger.Infof("listening on %s", srv.Addr)
	return srv.ListenAndServe()
}
