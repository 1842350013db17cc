package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-consolidator/internal/server"
	"github.com/jonathan/cv-consolidator/internal/server/ratelimit"
)

type serveOptions struct {
	commonFlags
	port int
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Start an HTTP server that accepts CV uploads on POST /v1/cv and serves stored records on GET /v1/cv/{session_id}.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (default 8080)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx := cmd.Context()
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = opts.port
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	a, err := newApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.close()

	var records server.Records
	if a.store != nil {
		records = a.store
	} else {
		logger.Warn("no database configured, uploaded CVs will not be stored")
	}

	srv := server.New(server.Config{Port: cfg.Port, RateLimit: ratelimit.LoadConfig()}, a.runner, records, logger)
	return srv.Start(ctx)
}
