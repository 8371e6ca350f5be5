package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/metrics"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/models"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/telemetry"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// DefaultBackoff is the pause taken after a quota error.
const DefaultBackoff = 30 * time.Second

// ErrNoCandidates is returned when Invoke is called with an empty model list.
var ErrNoCandidates = errors.New("no model candidates configured")

// Generator performs one generation call against one candidate.
type Generator interface {
	Generate(ctx context.Context, spec models.ModelSpec, prompt string) (string, error)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config configures an Invoker.
type Config struct {
	// Backoff is the pause after a quota error. Defaults to DefaultBackoff.
	Backoff time.Duration
	// Extract turns free text into a payload. Nil returns the text unchanged.
	Extract func(text string) string
	// Sleep defaults to a timer honouring context cancellation.
	Sleep   SleepFunc
	Metrics *metrics.Recorder
}

// Attempt is the record of one tried candidate.
type Attempt struct {
	Model    models.ModelSpec
	Mode     models.OutputMode
	Err      error
	Kind     models.ErrorKind
	Duration time.Duration
	// BackedOff is set when a quota pause followed this attempt.
	BackedOff bool
}

// Outcome is the result of a successful invocation.
type Outcome struct {
	Payload      string
	Model        models.ModelSpec
	Attempts     []Attempt
	InvocationID string
}

// ExhaustedError is returned when every candidate failed.
type ExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d model candidates failed, last error: %v", len(e.Attempts), e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Invoker tries candidates in priority order until one succeeds.
type Invoker struct {
	gen    Generator
	cfg    Config
	logger logr.Logger
}

// New creates an Invoker over gen.
func New(gen Generator, cfg Config, logger logr.Logger) *Invoker {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.Extract == nil {
		cfg.Extract = func(text string) string { return text }
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
	return &Invoker{gen: gen, cfg: cfg, logger: logger}
}

// Invoke sends prompt to each candidate in order, each at most once, and
// returns the first successful payload. Structured candidates return their
// raw text; free-text candidates go through the extractor. A quota error is
// followed by a pause before the next candidate; other errors move on
// immediately. There is no pause after the last candidate.
func (i *Invoker) Invoke(ctx context.Context, prompt string, candidates []models.ModelSpec) (*Outcome, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	invocationID := uuid.NewString()
	log := i.logger.WithValues("invocationID", invocationID)
	ctx = telemetry.SetSpanAttributes(ctx, map[string]string{telemetry.AttrInvocationID: invocationID})

	attempts := make([]Attempt, 0, len(candidates))
	var lastErr error
	for idx, spec := range candidates {
		attempt, payload := i.try(ctx, spec, prompt)
		if attempt.Err == nil {
			attempts = append(attempts, attempt)
			log.Info("Model succeeded", "model", spec.Key(), "mode", attempt.Mode, "attempt", idx+1, "duration", attempt.Duration)
			i.cfg.Metrics.ObserveInvocation(metrics.StatusCompleted)
			return &Outcome{
				Payload:      payload,
				Model:        spec,
				Attempts:     attempts,
				InvocationID: invocationID,
			}, nil
		}

		lastErr = attempt.Err
		log.Info("Model failed", "model", spec.Key(), "mode", attempt.Mode, "attempt", idx+1, "kind", attempt.Kind, "error", attempt.Err.Error())

		if ctx.Err() != nil {
			attempts = append(attempts, attempt)
			i.cfg.Metrics.ObserveInvocation(metrics.StatusCanceled)
			return nil, fmt.Errorf("invocation canceled: %w", ctx.Err())
		}

		if attempt.Kind == models.KindQuota && idx < len(candidates)-1 {
			attempt.BackedOff = true
			attempts = append(attempts, attempt)
			i.cfg.Metrics.ObserveBackoff(spec.Key())
			log.Info("Quota exhausted, pausing before next model",
				"model", spec.Key(),
				"backoff", i.cfg.Backoff,
				"retryHint", retryHint(attempt.Err),
				"next", candidates[idx+1].Key())
			if err := i.cfg.Sleep(ctx, i.cfg.Backoff); err != nil {
				i.cfg.Metrics.ObserveInvocation(metrics.StatusCanceled)
				return nil, fmt.Errorf("invocation canceled during backoff: %w", err)
			}
			continue
		}
		attempts = append(attempts, attempt)
	}

	i.cfg.Metrics.ObserveInvocation(metrics.StatusExhausted)
	log.Info("All models failed", "attempts", len(attempts))
	return nil, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

func (i *Invoker) try(ctx context.Context, spec models.ModelSpec, prompt string) (Attempt, string) {
	attempt := Attempt{Model: spec, Mode: spec.Mode()}

	spanCtx, span := telemetry.StartAttemptSpan(ctx, spec.Key(), string(attempt.Mode))
	start := time.Now()
	text, err := i.gen.Generate(spanCtx, spec, prompt)
	attempt.Duration = time.Since(start)

	if err != nil {
		attempt.Err = err
		attempt.Kind = models.KindOf(err)
		telemetry.EndAttemptSpan(span, string(attempt.Kind), err)
		i.cfg.Metrics.ObserveAttempt(spec.Key(), string(attempt.Kind), attempt.Duration)
		return attempt, ""
	}
	telemetry.EndAttemptSpan(span, "", nil)
	i.cfg.Metrics.ObserveAttempt(spec.Key(), "", attempt.Duration)

	if attempt.Mode == models.OutputModeText {
		return attempt, i.cfg.Extract(text)
	}
	return attempt, text
}

// retryHint returns the provider's suggested retry delay, if any.
func retryHint(err error) time.Duration {
	var pe *models.ProviderError
	if errors.As(err, &pe) {
		return pe.RetryAfter
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
