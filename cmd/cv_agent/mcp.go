package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-consolidator/internal/tool"
)

func newMCPCmd() *cobra.Command {
	opts := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the extract_cv tool over MCP stdio",
		Long:  `Run a Model Context Protocol server on stdin/stdout exposing the extract_cv tool. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			a, err := newApp(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer a.close()

			logger.Info("mcp server starting", "tool", tool.MetadataExtractCV.Name, "version", tool.Version)
			return tool.Run(ctx, a.runner)
		},
	}
	opts.register(cmd)
	return cmd
}
