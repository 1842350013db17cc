package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-consolidator/internal/config"
	"github.com/jonathan/cv-consolidator/internal/extraction"
	"github.com/jonathan/cv-consolidator/internal/ingestion"
	"github.com/jonathan/cv-consolidator/internal/pipeline"
)

// Exit codes
const (
	exitFailure     = 1
	exitInput       = 3
	exitUnavailable = 4
)

// commonFlags are shared by every command that runs the pipeline
type commonFlags struct {
	configPath  string
	apiKey      string
	databaseURL string
	sqlitePath  string
	verbose     bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a config file (.json, .yaml or .yml); flags override its values")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite", "", "Path to a SQLite database file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
	cmd.MarkFlagsMutuallyExclusive("db-url", "sqlite")
}

// resolve loads the config file, applies flag and environment overrides and
// fills defaults
func (f *commonFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
		cfg.SQLitePath = ""
	}
	if cmd.Flags().Changed("sqlite") {
		cfg.SQLitePath = f.sqlitePath
		cfg.DatabaseURL = ""
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cv_agent",
		Short:         "CV extraction and consolidation",
		Long:          "cv_agent turns an uploaded CV (PDF, DOCX, ODT, HTML, Markdown or text) into one structured, consolidated record.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd(), newServeCmd(), newMCPCmd(), newValidateCmd())
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	var (
		inputErr       *pipeline.InputError
		formatErr      *ingestion.UnsupportedFormatError
		unreadableErr  *ingestion.UnreadableDocumentError
		unavailableErr *extraction.ServiceUnavailableError
	)
	switch {
	case errors.As(err, &inputErr), errors.As(err, &formatErr), errors.As(err, &unreadableErr):
		return exitInput
	case errors.As(err, &unavailableErr):
		return exitUnavailable
	default:
		return exitFailure
	}
}
