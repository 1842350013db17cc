package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-consolidator/internal/pipeline"
	"github.com/jonathan/cv-consolidator/internal/types"
)

type extractOptions struct {
	commonFlags
	in        string
	out       string
	sessionID string
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract and consolidate one CV document",
		Long: `Reads a CV document, extracts it into the canonical record and writes the result as JSON.

The format is detected from the file extension. When a database is configured
(--db-url, --sqlite or DATABASE_URL) the record is also stored under the session ID.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, opts)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "Path to the CV document")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Path to write the JSON result (defaults to stdout)")
	cmd.Flags().StringVar(&opts.sessionID, "session-id", "", "Session ID for the stored record (generated when omitted)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runExtract(cmd *cobra.Command, opts *extractOptions) error {
	ctx := cmd.Context()
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.in, err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	a, err := newApp(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	doc := types.RawDocument{Content: content, Filename: filepath.Base(opts.in)}
	result, runErr := a.runner.Run(ctx, doc, pipeline.Options{
		SessionID: opts.sessionID,
		OnProgress: func(event pipeline.ProgressEvent) {
			logger.Debug(event.Message, "step", event.Step)
		},
	})

	var persistErr *pipeline.PersistenceError
	if runErr != nil && !errors.As(runErr, &persistErr) {
		return runErr
	}

	if err := writeResult(cmd, opts.out, result); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if result.Persisted {
		logger.Info("cv stored", "session_id", result.SessionID)
	}
	return nil
}

func writeResult(cmd *cobra.Command, path string, result *pipeline.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
