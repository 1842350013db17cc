package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonathan/cv-consolidator/internal/config"
	"github.com/jonathan/cv-consolidator/internal/db"
	"github.com/jonathan/cv-consolidator/internal/llm"
	"github.com/jonathan/cv-consolidator/internal/observability"
	"github.com/jonathan/cv-consolidator/internal/pipeline"
	"github.com/jonathan/cv-consolidator/internal/server"
)

// store is a persistence backend that can also read and delete records
type store interface {
	pipeline.Store
	server.Records
}

// openStore connects to the configured backend. Both return values are nil
// when no backend is configured.
func openStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database, database.Close, nil
	case cfg.SQLitePath != "":
		sqlite, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return sqlite, func() { _ = sqlite.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

// app holds the collaborators shared by the commands
type app struct {
	runner *pipeline.Runner
	store  store
	close  func()
}

// newApp wires the Gemini client, the optional store and the pipeline runner.
// printerOut receives verbose boxes when cfg.Verbose is set.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, printerOut io.Writer) (*app, error) {
	client, err := llm.NewGeminiClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	deps := pipeline.Deps{
		Client:   client,
		Embedder: client,
		Store:    st,
		Logger:   logger,
	}
	if cfg.Verbose && printerOut != nil {
		deps.Printer = observability.NewPrinter(printerOut)
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.MinTextChars = cfg.MinTextChars
	pcfg.Extraction = cfg.ExtractionConfig()
	pcfg.SimilarityThreshold = cfg.Threshold()
	pcfg.Planner = cfg.Planner()

	return &app{
		runner: pipeline.NewRunner(deps, pcfg),
		store:  st,
		close: func() {
			closeStore()
			_ = client.Close()
		},
	}, nil
}
