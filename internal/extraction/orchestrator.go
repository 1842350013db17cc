// Package extraction turns CV text into a CanonicalCV by issuing one
// structured-extraction request per field group and one per role chunk,
// all concurrently, and merging the typed results.
package extraction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonathan/cv-consolidator/internal/llm"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// Config controls timeouts, model tiers and concurrency of one extraction
type Config struct {
	// RequestTimeout bounds each individual request
	RequestTimeout time.Duration
	// OverallTimeout bounds the whole extraction. Groups still running when
	// it fires fall back to their defaults.
	OverallTimeout time.Duration
	// GroupTier is used for identity, summary and education/skills
	GroupTier llm.ModelTier
	// RoleTier is used for each role chunk
	RoleTier llm.ModelTier
	// MaxConcurrency caps in-flight requests; zero means unlimited
	MaxConcurrency int
}

// DefaultConfig returns the default extraction settings
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 45 * time.Second,
		OverallTimeout: 3 * time.Minute,
		GroupTier:      llm.TierLite,
		RoleTier:       llm.TierStandard,
		MaxConcurrency: 0,
	}
}

// Orchestrator runs the concurrent field-group extraction
type Orchestrator struct {
	client llm.Client
	config Config
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger uses slog.Default().
func NewOrchestrator(client llm.Client, config Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: client, config: config, logger: logger}
}

// Result is the merged record plus a per-group report of what was defaulted
type Result struct {
	CV     *types.CanonicalCV
	Report Report
}

// Extract issues the identity, summary and education/skills requests plus one
// request per chunk, waits for all of them, and merges the results. A failed
// group never aborts the others; it is replaced by its default and recorded
// in the report. Extract only fails when every request failed because the
// service was unavailable, or when ctx was canceled by the caller.
func (o *Orchestrator) Extract(ctx context.Context, text string, chunks []types.JobTextChunk) (*Result, error) {
	runCtx := ctx
	if o.config.OverallTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.config.OverallTimeout)
		defer cancel()
	}

	var (
		identity  Outcome[identityPartial]
		summary   Outcome[summaryPartial]
		eduSkills Outcome[educationSkillsPartial]
		roles     = make([]Outcome[rolePartial], len(chunks))
	)

	tg := newTaskGroup(o.config.MaxConcurrency)
	spawn(tg, &identity, identityDefault, func() (identityPartial, error) {
		var out identityPartial
		err := o.request(runCtx, GroupIdentity, identitySchema(), text, o.config.GroupTier, &out)
		return out, err
	})
	spawn(tg, &summary, summaryDefault, func() (summaryPartial, error) {
		var out summaryPartial
		err := o.request(runCtx, GroupSummary, summarySchema(), text, o.config.GroupTier, &out)
		return out, err
	})
	spawn(tg, &eduSkills, educationSkillsDefault, func() (educationSkillsPartial, error) {
		var out educationSkillsPartial
		err := o.request(runCtx, GroupEducationSkills, educationSkillsSchema(), text, o.config.GroupTier, &out)
		return out, err
	})
	for i, chunk := range chunks {
		spawn(tg, &roles[i], roleDefault, func() (rolePartial, error) {
			var out rolePartial
			err := o.request(runCtx, GroupRole, roleSchema(chunk), chunk.Text, o.config.RoleTier, &out)
			return out, err
		})
	}
	tg.wait()

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, ctx.Err()
	}

	report := Report{}
	report.add(GroupIdentity, nil, identity.Status, identity.Reason, identity.Err, identity.Duration)
	report.add(GroupSummary, nil, summary.Status, summary.Reason, summary.Err, summary.Duration)
	report.add(GroupEducationSkills, nil, eduSkills.Status, eduSkills.Reason, eduSkills.Err, eduSkills.Duration)
	for i := range roles {
		idx := chunks[i].Index
		report.add(GroupRole, &idx, roles[i].Status, roles[i].Reason, roles[i].Err, roles[i].Duration)
	}

	if err := allUnavailable(identity.Err, summary.Err, eduSkills.Err, roleErrors(roles)); err != nil {
		return nil, err
	}

	for _, g := range report.Groups {
		if g.Status != StatusDefaulted {
			continue
		}
		attrs := []any{"group", g.Group, "reason", g.Reason, "error", g.Error}
		if g.Chunk != nil {
			attrs = append(attrs, "chunk", *g.Chunk)
		}
		o.logger.Warn("extraction group defaulted", attrs...)
	}

	cv, discarded := merge(identity.Value, summary.Value, eduSkills.Value, roles)
	report.DiscardedRoles = discarded
	o.logger.Debug("extraction merged",
		"roles", len(cv.Roles), "discarded_roles", discarded, "defaulted_groups", report.Defaulted)

	return &Result{CV: cv, Report: report}, nil
}

// request sends one structured-extraction call and decodes the response into out
func (o *Orchestrator) request(ctx context.Context, group string, schema llm.ExtractionSchema, input string, tier llm.ModelTier, out any) error {
	if o.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.RequestTimeout)
		defer cancel()
	}

	response, err := o.client.GenerateStructured(ctx, schema, input, tier)
	if err != nil {
		return err
	}
	return decodeGroup(group, response, out)
}

func roleErrors(roles []Outcome[rolePartial]) []error {
	errs := make([]error, len(roles))
	for i, r := range roles {
		errs[i] = r.Err
	}
	return errs
}

// allUnavailable returns a ServiceUnavailableError when every call failed
// with a service failure
func allUnavailable(identityErr, summaryErr, eduErr error, roleErrs []error) error {
	all := append([]error{identityErr, summaryErr, eduErr}, roleErrs...)
	for _, err := range all {
		if err == nil || !isServiceFailure(err) {
			return nil
		}
	}
	return &ServiceUnavailableError{Calls: len(all), Cause: all[0]}
}
