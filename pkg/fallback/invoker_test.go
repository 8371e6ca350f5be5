package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/metrics"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/models"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/translation"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type reply struct {
	text string
	err  error
}

// scriptedGenerator answers each candidate from a fixed script and records
// the order of calls.
type scriptedGenerator struct {
	replies map[string]reply
	calls   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, spec models.ModelSpec, _ string) (string, error) {
	g.calls = append(g.calls, spec.Identifier)
	r, ok := g.replies[spec.Identifier]
	if !ok {
		return "", errors.New("unexpected model " + spec.Identifier)
	}
	return r.text, r.err
}

// recordingSleep records pauses without waiting.
type recordingSleep struct {
	pauses []time.Duration
	err    error
}

func (s *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	s.pauses = append(s.pauses, d)
	return s.err
}

func quotaErr(model string) error {
	return models.Classify(model, genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota exceeded"})
}

func serverErr(model string) error {
	return models.Classify(model, genai.APIError{Code: 500, Status: "INTERNAL", Message: "boom " + model})
}

func newTestInvoker(gen Generator, s *recordingSleep) *Invoker {
	return New(gen, Config{
		Extract: translation.ExtractPayload,
		Sleep:   s.sleep,
	}, logr.Discard())
}

func TestInvoke_FirstSuccessStops(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {text: `{"translated_code":"print(1)"}`},
		"b": {text: `{"translated_code":"never"}`},
	}}
	s := &recordingSleep{}

	out, err := newTestInvoker(gen, s).Invoke(t.Context(), "p", []models.ModelSpec{
		{Identifier: "a", SupportsStructuredOutput: true},
		{Identifier: "b", SupportsStructuredOutput: true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"translated_code":"print(1)"}`, out.Payload)
	assert.Equal(t, "a", out.Model.Identifier)
	assert.Len(t, out.Attempts, 1)
	assert.NotEmpty(t, out.InvocationID)
	assert.Equal(t, []string{"a"}, gen.calls)
	assert.Empty(t, s.pauses)
}

func TestInvoke_NonQuotaFailuresDoNotPause(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {err: serverErr("a")},
		"b": {err: errors.New("connection reset")},
		"c": {err: serverErr("c")},
		"d": {text: `{"translated_code":"ok"}`},
	}}
	s := &recordingSleep{}

	out, err := newTestInvoker(gen, s).Invoke(t.Context(), "p", []models.ModelSpec{
		{Identifier: "a", SupportsStructuredOutput: true},
		{Identifier: "b", SupportsStructuredOutput: true},
		{Identifier: "c", SupportsStructuredOutput: true},
		{Identifier: "d", SupportsStructuredOutput: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, gen.calls)
	assert.Len(t, out.Attempts, 4)
	assert.Empty(t, s.pauses)
	for _, a := range out.Attempts[:3] {
		assert.Error(t, a.Err)
		assert.False(t, a.BackedOff)
	}
	assert.Equal(t, models.KindServer, out.Attempts[0].Kind)
	assert.Equal(t, models.KindUnknown, out.Attempts[1].Kind)
}

func TestInvoke_QuotaPausesOnce(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {err: quotaErr("a")},
		"b": {text: `{"translated_code":"ok"}`},
	}}
	s := &recordingSleep{}

	out, err := newTestInvoker(gen, s).Invoke(t.Context(), "p", []models.ModelSpec{
		{Identifier: "a", SupportsStructuredOutput: true},
		{Identifier: "b", SupportsStructuredOutput: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", out.Model.Identifier)
	assert.Equal(t, []time.Duration{30 * time.Second}, s.pauses)
	require.Len(t, out.Attempts, 2)
	assert.True(t, out.Attempts[0].BackedOff)
	assert.Equal(t, models.KindQuota, out.Attempts[0].Kind)
}

func TestInvoke_NoPauseAfterLastCandidate(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {err: serverErr("a")},
		"b": {err: quotaErr("b")},
	}}
	s := &recordingSleep{}

	_, err := newTestInvoker(gen, s).Invoke(t.Context(), "p", []models.ModelSpec{
		{Identifier: "a"},
		{Identifier: "b"},
	})
	require.Error(t, err)
	assert.Empty(t, s.pauses)
}

func TestInvoke_ExhaustedReportsLastError(t *testing.T) {
	last := serverErr("c")
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {err: quotaErr("a")},
		"b": {err: serverErr("b")},
		"c": {err: last},
	}}
	s := &recordingSleep{}

	_, err := newTestInvoker(gen, s).Invoke(t.Context(), "p", []models.ModelSpec{
		{Identifier: "a", SupportsStructuredOutput: true},
		{Identifier: "b", SupportsStructuredOutput: true},
		{Identifier: "c"},
	})
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Len(t, exhausted.Attempts, 3)
	assert.Same(t, last, exhausted.Last)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "boom c")
	assert.Equal(t, []time.Duration{30 * time.Second}, s.pauses)
}

func TestInvoke_FreeTextIsExtracted(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"gemma": {text: "Sure!\n```python\nprint('hi')\n```"},
	}}

	out, err := newTestInvoker(gen, &recordingSleep{}).Invoke(t.Context(), "p", []models.ModelSpec{{Identifier: "gemma"}})
	require.NoError(t, err)
	assert.Equal(t, `{"translated_code":"Sure!\n\nprint('hi')"}`, out.Payload)
	assert.Equal(t, models.OutputModeText, out.Attempts[0].Mode)
}

func TestInvoke_StructuredTextIsRaw(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"flash": {text: "not json at all"},
	}}

	out, err := newTestInvoker(gen, &recordingSleep{}).Invoke(t.Context(), "p", []models.ModelSpec{{Identifier: "flash", SupportsStructuredOutput: true}})
	require.NoError(t, err)
	assert.Equal(t, "not json at all", out.Payload)
}

func TestInvoke_EmptyCandidates(t *testing.T) {
	_, err := newTestInvoker(&scriptedGenerator{}, &recordingSleep{}).Invoke(t.Context(), "p", nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestInvoke_CanceledDuringBackoff(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {err: quotaErr("a")},
		"b": {text: "{}"},
	}}
	s := &recordingSleep{err: context.Canceled}

	_, err := newTestInvoker(gen, s).Invoke(t.Context(), "p", []models.ModelSpec{{Identifier: "a"}, {Identifier: "b"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, gen.calls)
}

func TestInvoke_CanceledContextStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	gen := &cancelingGenerator{cancel: cancel}

	_, err := New(gen, Config{}, logr.Discard()).Invoke(ctx, "p", []models.ModelSpec{{Identifier: "a"}, {Identifier: "b"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls)
}

type cancelingGenerator struct {
	cancel context.CancelFunc
	calls  int
}

func (g *cancelingGenerator) Generate(ctx context.Context, spec models.ModelSpec, _ string) (string, error) {
	g.calls++
	g.cancel()
	return "", models.Classify(spec.Key(), ctx.Err())
}

func TestDefaultSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	start := time.Now()
	err := sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, sleep(t.Context(), time.Millisecond))
}

func TestInvoke_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	gen := &scriptedGenerator{replies: map[string]reply{
		"a": {err: quotaErr("a")},
		"b": {text: `{"translated_code":"ok"}`},
	}}

	_, err := New(gen, Config{Sleep: (&recordingSleep{}).sleep, Metrics: rec}, logr.Discard()).
		Invoke(t.Context(), "p", []models.ModelSpec{{Identifier: "a", SupportsStructuredOutput: true}, {Identifier: "b", SupportsStructuredOutput: true}})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["translator_quota_backoffs_total"])
	assert.True(t, found["translator_invocations_total"])
	assert.True(t, found["translator_model_attempts_total"])
}

func TestRetryHint(t *testing.T) {
	err := models.Classify("a", genai.APIError{
		Code:    429,
		Status:  "RESOURCE_EXHAUSTED",
		Details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "12s"}},
	})
	assert.Equal(t, 12*time.Second, retryHint(err))
	assert.Zero(t, retryHint(errors.New("plain")))
}
