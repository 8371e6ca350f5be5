package a2a

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Samir-atra/code-translator-purple-agent/pkg/fallback"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/models"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/telemetry"
	"github.com/Samir-atra/code-translator-purple-agent/pkg/translation"
	a2atype "github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
	"github.com/go-logr/logr"
)

// Invoker runs a prompt through the ordered model candidates.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, candidates []models.ModelSpec) (*fallback.Outcome, error)
}

// eventWriter is the part of eventqueue.Queue the executor writes to.
type eventWriter interface {
	Write(ctx context.Context, event a2atype.Event) error
}

// TranslatorExecutorConfig holds configuration for the executor.
type TranslatorExecutorConfig struct {
	ExecutionTimeout time.Duration
	AppName          string
}

// TranslatorExecutor implements a2asrv.AgentExecutor: it turns one request
// message into a translation artifact.
type TranslatorExecutor struct {
	Invoker Invoker
	Models  []models.ModelSpec
	Config  TranslatorExecutorConfig

	mu      sync.Mutex
	running map[a2atype.TaskID]context.CancelCauseFunc
}

// errTaskCanceled is the cause set on a run stopped by Cancel.
var errTaskCanceled = errors.New("task canceled by client")

// Compile-time check that TranslatorExecutor implements a2asrv.AgentExecutor.
var _ a2asrv.AgentExecutor = (*TranslatorExecutor)(nil)

// NewTranslatorExecutor creates a new TranslatorExecutor.
func NewTranslatorExecutor(invoker Invoker, candidates []models.ModelSpec, config TranslatorExecutorConfig) *TranslatorExecutor {
	if config.ExecutionTimeout == 0 {
		config.ExecutionTimeout = DefaultExecutionTimeout
	}
	return &TranslatorExecutor{
		Invoker: invoker,
		Models:  candidates,
		Config:  config,
	}
}

// Execute translates the request and publishes updates to the event queue.
func (e *TranslatorExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return e.execute(ctx, reqCtx, queue)
}

func (e *TranslatorExecutor) execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventWriter) error {
	log := logr.FromContextOrDiscard(ctx)

	if reqCtx.Message == nil {
		return errors.New(MessageNilRequest)
	}

	ctx = telemetry.SetSpanAttributes(ctx, map[string]string{
		telemetry.AttrTaskID:         string(reqCtx.TaskID),
		telemetry.AttrConversationID: reqCtx.ContextID,
	})

	if reqCtx.StoredTask == nil {
		event := a2atype.NewStatusUpdateEvent(reqCtx, a2atype.TaskStateSubmitted, reqCtx.Message)
		if err := queue.Write(ctx, event); err != nil {
			return err
		}
	}

	raw := messageText(reqCtx.Message)
	if strings.TrimSpace(raw) == "" {
		return e.sendFailure(ctx, reqCtx, queue, MessageNoContent)
	}

	workingEvent := a2atype.NewStatusUpdateEvent(reqCtx, a2atype.TaskStateWorking, textMessage(WorkingMessage))
	workingEvent.Metadata = map[string]any{
		GetMetadataKey("app_name"):   e.Config.AppName,
		GetMetadataKey("context_id"): reqCtx.ContextID,
	}
	if err := queue.Write(ctx, workingEvent); err != nil {
		return err
	}

	req := translation.ParseRequest(raw)
	ctx = telemetry.SetSpanAttributes(ctx, map[string]string{
		telemetry.AttrSourceLanguage: req.SourceLanguage,
		telemetry.AttrTargetLanguage: req.TargetLanguage,
	})
	prompt := translation.BuildPrompt(req)

	// Use WithoutCancel so execution is not cancelled when the incoming
	// request context is cancelled. Only Cancel or the timeout stop it.
	runCtx, stop := context.WithCancelCause(context.WithoutCancel(ctx))
	defer stop(nil)
	execCtx, cancel := context.WithTimeout(runCtx, e.Config.ExecutionTimeout)
	defer cancel()
	e.track(reqCtx.TaskID, stop)
	defer e.untrack(reqCtx.TaskID)

	outcome, err := e.Invoker.Invoke(execCtx, prompt, e.Models)
	if errors.Is(context.Cause(execCtx), errTaskCanceled) {
		// Cancel already published the terminal event.
		log.Info("Translation stopped by cancel", "taskID", reqCtx.TaskID)
		return nil
	}
	// Terminal events are written even when execCtx expired.
	writeCtx := context.WithoutCancel(ctx)
	if err != nil {
		log.Error(err, "Translation failed", "taskID", reqCtx.TaskID)
		return e.sendFailure(writeCtx, reqCtx, queue, err.Error())
	}

	payload := translation.NormalizePayload(outcome.Payload)
	log.Info("Translation completed",
		"taskID", reqCtx.TaskID,
		"model", outcome.Model.Key(),
		"attempts", len(outcome.Attempts),
		"invocationID", outcome.InvocationID)

	artifactEvent := a2atype.NewArtifactEvent(reqCtx, a2atype.TextPart{Text: payload})
	artifactEvent.Artifact.Name = ArtifactName
	artifactEvent.LastChunk = true
	if err := queue.Write(writeCtx, artifactEvent); err != nil {
		return err
	}

	completedEvent := a2atype.NewStatusUpdateEvent(reqCtx, a2atype.TaskStateCompleted, textMessage(payload))
	completedEvent.Final = true
	completedEvent.Metadata = map[string]any{
		GetMetadataKey("model"):         outcome.Model.Key(),
		GetMetadataKey("invocation_id"): outcome.InvocationID,
	}
	return queue.Write(writeCtx, completedEvent)
}

// Cancel is called when the client requests the agent to stop working on a task.
func (e *TranslatorExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	return e.cancel(ctx, reqCtx, queue)
}

func (e *TranslatorExecutor) cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventWriter) error {
	event := a2atype.NewStatusUpdateEvent(reqCtx, a2atype.TaskStateCanceled, nil)
	event.Final = true
	err := queue.Write(ctx, event)

	e.mu.Lock()
	stop, ok := e.running[reqCtx.TaskID]
	e.mu.Unlock()
	if ok {
		stop(errTaskCanceled)
	}
	return err
}

// track registers the stop func of a running task.
func (e *TranslatorExecutor) track(id a2atype.TaskID, stop context.CancelCauseFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running == nil {
		e.running = make(map[a2atype.TaskID]context.CancelCauseFunc)
	}
	e.running[id] = stop
}

func (e *TranslatorExecutor) untrack(id a2atype.TaskID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, id)
}

func (e *TranslatorExecutor) sendFailure(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventWriter, message string) error {
	event := a2atype.NewStatusUpdateEvent(reqCtx, a2atype.TaskStateFailed, textMessage(message))
	event.Final = true
	return queue.Write(ctx, event)
}
