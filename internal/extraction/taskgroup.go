package extraction

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-consolidator/internal/llm"
)

// Status records whether a group produced its own value or fell back to its default
type Status string

// Outcome statuses
const (
	StatusOK        Status = "ok"
	StatusDefaulted Status = "defaulted"
)

// Failure reasons reported for defaulted groups
const (
	ReasonParse    = "parse_error"
	ReasonTimeout  = "timeout"
	ReasonService  = "service_error"
	ReasonCanceled = "canceled"
)

// Outcome is the result of one field-group task: either the decoded value or
// the group's default together with the reason it was substituted.
type Outcome[T any] struct {
	Value    T
	Status   Status
	Reason   string
	Err      error
	Duration time.Duration
}

// taskGroup runs field-group tasks concurrently and waits for all of them.
// A failing task never cancels its siblings; its failure is recorded in its
// Outcome instead.
type taskGroup struct {
	g errgroup.Group
}

func newTaskGroup(limit int) *taskGroup {
	tg := &taskGroup{}
	if limit > 0 {
		tg.g.SetLimit(limit)
	}
	return tg
}

// spawn starts fn and writes its outcome to out. Each task owns its out
// slot, so no locking is needed.
func spawn[T any](tg *taskGroup, out *Outcome[T], fallback func() T, fn func() (T, error)) {
	tg.g.Go(func() error {
		start := time.Now()
		value, err := fn()
		if err != nil {
			*out = Outcome[T]{
				Value:    fallback(),
				Status:   StatusDefaulted,
				Reason:   reasonFor(err),
				Err:      err,
				Duration: time.Since(start),
			}
			return nil
		}
		*out = Outcome[T]{Value: value, Status: StatusOK, Duration: time.Since(start)}
		return nil
	})
}

func (tg *taskGroup) wait() {
	_ = tg.g.Wait()
}

func reasonFor(err error) string {
	var parseErr *ParseError
	switch {
	case errors.As(err, &parseErr):
		return ReasonParse
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case llm.IsTimeout(err):
		return ReasonTimeout
	default:
		return ReasonService
	}
}

// isServiceFailure reports whether err means the service was unreachable or
// refused the call, as opposed to answering badly or too slowly
func isServiceFailure(err error) bool {
	var svcErr *llm.ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	switch svcErr.Kind {
	case llm.KindUnavailable, llm.KindAuth, llm.KindOther:
		return true
	default:
		return false
	}
}
