// Package pipeline provides the high-level orchestration from an uploaded
// document to a stored, consolidated CV.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-consolidator/internal/budget"
	"github.com/jonathan/cv-consolidator/internal/dedupe"
	"github.com/jonathan/cv-consolidator/internal/extraction"
	"github.com/jonathan/cv-consolidator/internal/ingestion"
	"github.com/jonathan/cv-consolidator/internal/llm"
	"github.com/jonathan/cv-consolidator/internal/observability"
	"github.com/jonathan/cv-consolidator/internal/sanitize"
	"github.com/jonathan/cv-consolidator/internal/schemas"
	"github.com/jonathan/cv-consolidator/internal/segment"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// DefaultMinTextChars is the shortest extracted text accepted for extraction
const DefaultMinTextChars = 50

// Step names reported through ProgressEvent
const (
	StepIngest      = "ingest"
	StepSegment     = "segment"
	StepExtract     = "extract"
	StepDedupe      = "dedupe"
	StepBudget      = "budget"
	StepConsolidate = "consolidate"
	StepPersist     = "persist"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step      string `json:"step"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. Dedupe and
// budget events may arrive from different goroutines.
type ProgressCallback func(event ProgressEvent)

// Store persists the consolidated CV keyed by session, replacing any
// earlier record for the same session
type Store interface {
	UpsertCV(ctx context.Context, sessionID string, cv *types.CanonicalCV, meta *ingestion.Metadata) error
}

// Config holds the tunables of a Runner
type Config struct {
	MinTextChars        int
	Extraction          extraction.Config
	SimilarityThreshold float64
	Planner             budget.Planner
	Segmenter           segment.Rules
	Sanitizer           sanitize.Rules
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		MinTextChars:        DefaultMinTextChars,
		Extraction:          extraction.DefaultConfig(),
		SimilarityThreshold: dedupe.DefaultThreshold,
		Planner:             budget.NewPlanner(),
		Segmenter:           segment.DefaultRules(),
		Sanitizer:           sanitize.DefaultRules(),
	}
}

// Deps are the external collaborators of a Runner. Store, Printer and
// Logger may be nil.
type Deps struct {
	Client    llm.Client
	Embedder  llm.Embedder
	Extractor *ingestion.Extractor
	Store     Store
	Printer   *observability.Printer
	Logger    *slog.Logger
}

// Options holds per-run settings
type Options struct {
	// SessionID keys the stored record; a new UUID is used when empty
	SessionID  string
	OnProgress ProgressCallback
}

// Result is the outcome of one run
type Result struct {
	SessionID string               `json:"session_id"`
	CV        *types.CanonicalCV   `json:"cv"`
	Metadata  *ingestion.Metadata  `json:"metadata"`
	Span      types.LineRange      `json:"work_experience_span"`
	Chunks    int                  `json:"chunks"`
	Report    extraction.Report    `json:"report"`
	Schema    []schemas.FieldError `json:"schema_violations,omitempty"`
	Persisted bool                 `json:"persisted"`
	Duration  time.Duration        `json:"-"`
}

// Runner executes the extraction and consolidation pipeline. A Runner holds
// no per-run state and may be shared between goroutines.
type Runner struct {
	extractor    *ingestion.Extractor
	orchestrator *extraction.Orchestrator
	deduplicator *dedupe.Deduplicator
	planner      budget.Planner
	segmenter    segment.Rules
	sanitizer    sanitize.Rules
	store        Store
	printer      *observability.Printer
	minTextChars int
	logger       *slog.Logger
}

// NewRunner wires a Runner from its collaborators
func NewRunner(deps Deps, cfg Config) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	extractor := deps.Extractor
	if extractor == nil {
		extractor = ingestion.NewExtractor()
	}
	minChars := cfg.MinTextChars
	if minChars <= 0 {
		minChars = DefaultMinTextChars
	}
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = dedupe.DefaultThreshold
	}

	return &Runner{
		extractor:    extractor,
		orchestrator: extraction.NewOrchestrator(deps.Client, cfg.Extraction, logger),
		deduplicator: dedupe.New(deps.Embedder, dedupe.WithThreshold(threshold), dedupe.WithLogger(logger)),
		planner:      cfg.Planner,
		segmenter:    cfg.Segmenter,
		sanitizer:    cfg.Sanitizer,
		store:        deps.Store,
		printer:      deps.Printer,
		minTextChars: minChars,
		logger:       logger,
	}
}

// Run turns one uploaded document into a consolidated CV and hands it to the
// store. Input problems are reported as *InputError or the ingestion error
// types before any extraction request is made. A store failure returns the
// Result together with a *PersistenceError.
func (r *Runner) Run(ctx context.Context, doc types.RawDocument, opts Options) (*Result, error) {
	start := time.Now()
	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := r.logger.With("session_id", sessionID)
	emit := func(step, message string, content any) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Step: step, Message: message, SessionID: sessionID, Content: content})
		}
	}

	// Step 1: document to text
	if err := doc.Validate(); err != nil {
		return nil, &InputError{Reason: "document is empty or malformed", Cause: err}
	}
	extracted, err := r.extractor.ExtractText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("document extraction failed: %w", err)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(extracted.Text)); n < r.minTextChars {
		return nil, &InputError{
			Reason: fmt.Sprintf("extracted text has %d characters, at least %d are required", n, r.minTextChars),
		}
	}
	emit(StepIngest, fmt.Sprintf("Extracted %s text from %s", extracted.Format, displayName(doc.Filename)), nil)

	// Step 2: segment the work experience section
	seg := r.segmenter.Segment(extracted.Text)
	extracted.WorkExperienceSpan = seg.Span
	meta := ingestion.NewMetadata(doc.Filename, extracted)
	logger.Info("document segmented",
		"format", extracted.Format, "chars", meta.Chars, "span_start", seg.Span.Start, "span_end", seg.Span.End, "chunks", len(seg.Chunks))
	if r.printer != nil {
		r.printer.PrintChunks(seg.Span, seg.Chunks)
	}
	emit(StepSegment, fmt.Sprintf("Found %d role chunk(s)", len(seg.Chunks)), seg.Span)

	// Step 3: concurrent field-group extraction
	extractedCV, err := r.orchestrator.Extract(ctx, extracted.Text, seg.Chunks)
	if err != nil {
		return nil, fmt.Errorf("cv extraction failed: %w", err)
	}
	if r.printer != nil {
		r.printer.PrintExtractionReport(extractedCV.Report)
	}
	emit(StepExtract, fmt.Sprintf("Extracted %d role(s), %d group(s) defaulted",
		len(extractedCV.CV.Roles), extractedCV.Report.Defaulted), extractedCV.Report)

	// Step 4: duplicate detection and length planning in parallel
	var (
		duplicates []types.DuplicateCandidate
		plan       types.LengthPlan
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		duplicates = r.deduplicator.FindDuplicates(gCtx, extractedCV.CV)
		emit(StepDedupe, fmt.Sprintf("Found %d duplicate bullet pair(s)", len(duplicates)), nil)
		return nil
	})
	g.Go(func() error {
		plan = r.planner.Plan(extractedCV.CV)
		emit(StepBudget, fmt.Sprintf("Estimated %d page(s), keep %d of %d bullets",
			plan.EstimatedPages, plan.RecommendedBulletCount, plan.TotalBullets), nil)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return nil, err
	}

	// Step 5: sanitize and attach advisory metadata
	final := r.sanitizer.Consolidate(extractedCV.CV, duplicates, &plan)
	if r.printer != nil {
		r.printer.PrintDuplicates(final, final.Advisory.Duplicates)
		r.printer.PrintLengthPlan(final.Advisory.LengthPlan)
		r.printer.PrintCV(final)
	}

	result := &Result{
		SessionID: sessionID,
		CV:        final,
		Metadata:  meta,
		Span:      seg.Span,
		Chunks:    len(seg.Chunks),
		Report:    extractedCV.Report,
	}

	var validationErr *schemas.ValidationError
	if err := schemas.ValidateCV(final); errors.As(err, &validationErr) {
		result.Schema = validationErr.Errors
		logger.Warn("consolidated cv does not match schema", "violations", len(validationErr.Errors))
	} else if err != nil {
		logger.Warn("schema validation skipped", "error", err)
	}
	emit(StepConsolidate, "Consolidated CV", final)

	// Step 6: hand off to the store
	if r.store != nil {
		if err := r.store.UpsertCV(ctx, sessionID, final, meta); err != nil {
			logger.Error("failed to store cv", "error", err)
			result.Duration = time.Since(start)
			return result, &PersistenceError{SessionID: sessionID, Cause: err}
		}
		result.Persisted = true
		emit(StepPersist, "Stored CV", nil)
	}

	result.Duration = time.Since(start)
	logger.Info("pipeline finished",
		"roles", len(final.Roles), "duplicates", len(final.Advisory.Duplicates),
		"defaulted_groups", result.Report.Defaulted, "duration_ms", result.Duration.Milliseconds())
	return result, nil
}

func displayName(filename string) string {
	if filename == "" {
		return "upload"
	}
	return filename
}
