// Package hook routes incoming lifecycle events to the cache, summarizer and
// dispatcher. The hook contract is strict: whatever happens in here, the
// invoking tool must never see the hook as failed.
package hook

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kolapsis/chime/internal/cache"
	"github.com/kolapsis/chime/internal/config"
	"github.com/kolapsis/chime/internal/hookevent"
	"github.com/kolapsis/chime/internal/notify"
	"github.com/kolapsis/chime/internal/store"
	"github.com/kolapsis/chime/internal/summary"
)

// Dispatcher is the notification fan-out as seen by the classifier.
type Dispatcher interface {
	Dispatch(ctx context.Context, req notify.Request) notify.Outcome
}

// Runner is the event classifier and per-invocation orchestrator. Each hook
// invocation is stateless; the on-disk session cache is the only state that
// survives between invocations of the same session.
type Runner struct {
	cfg        *config.Config
	summarizer summary.Summarizer
	dispatcher Dispatcher
	history    store.Store // nil when history is disabled or unavailable
}

// NewRunner wires a Runner. summarizer and history may be nil; dispatch then
// falls back accordingly.
func NewRunner(cfg *config.Config, summarizer summary.Summarizer, dispatcher Dispatcher, history store.Store) *Runner {
	return &Runner{
		cfg:        cfg,
		summarizer: summarizer,
		dispatcher: dispatcher,
		history:    history,
	}
}

// Run processes one raw hook event. It never returns an error: input
// problems are logged and dropped so the invoking tool is unaffected.
func (r *Runner) Run(ctx context.Context, raw []byte) {
	in, err := hookevent.Parse(raw)
	if err != nil {
		slog.Warn("discarding unparseable hook event", "error", err, "bytes", len(raw))
		return
	}

	if in.SessionID == "" {
		slog.Warn("hook event missing session_id", "event", in.HookEventName)
		return
	}

	slog.Info("hook event received",
		"event", in.HookEventName,
		"session_id", in.SessionID,
		"cwd", in.Cwd)

	switch in.Kind() {
	case hookevent.KindPromptSubmitted:
		r.handlePrompt(in)
	case hookevent.KindSessionStopped:
		r.handleStop(ctx, in)
	case hookevent.KindAttentionNeeded:
		r.handleNotification(ctx, in)
	default:
		slog.Warn("unknown hook event, ignoring", "event", in.HookEventName)
	}
}

func (r *Runner) handlePrompt(in *hookevent.Input) {
	s := cache.NewStore(in.Cwd, r.cfg.Cache.Dir)
	if err := s.Append(in.SessionID, in.Prompt, in.Timestamp); err != nil {
		slog.Warn("caching prompt failed", "session_id", in.SessionID, "error", err)
		return
	}
	slog.Debug("prompt cached", "session_id", in.SessionID)
}

func (r *Runner) handleStop(ctx context.Context, in *hookevent.Input) {
	s := cache.NewStore(in.Cwd, r.cfg.Cache.Dir)
	entries := s.ReadAndClear(in.SessionID)

	sum := summary.Generate(ctx, r.summarizer, entries)
	project := projectName(in.Cwd)

	req := notify.Request{
		Title:      fmt.Sprintf("[%s] Task Complete", project),
		Message:    fmt.Sprintf("Session: %s\nSummary: %s", in.SessionID, sum),
		Priority:   0,
		WorkingDir: in.Cwd,
	}

	outcome := r.dispatcher.Dispatch(ctx, req)
	r.record(in, project, req, outcome)
}

func (r *Runner) handleNotification(ctx context.Context, in *hookevent.Input) {
	ntype := in.NotificationType
	if ntype == "" {
		ntype = "notification"
	}

	if r.cfg.Filters.Ignored(ntype) {
		slog.Info("notification type filtered, skipping",
			"notification_type", ntype,
			"session_id", in.SessionID)
		return
	}

	project := projectName(in.Cwd)

	req := notify.Request{
		Title:      fmt.Sprintf("[%s] Attention Needed", project),
		Message:    fmt.Sprintf("Session: %s\nType: %s\n%s", in.SessionID, ntype, in.Details()),
		Priority:   1,
		WorkingDir: in.Cwd,
	}

	outcome := r.dispatcher.Dispatch(ctx, req)
	r.record(in, project, req, outcome)
}

// record persists the dispatch outcome; failures only get logged.
func (r *Runner) record(in *hookevent.Input, project string, req notify.Request, outcome notify.Outcome) {
	if r.history == nil {
		return
	}

	d := &store.Delivery{
		ID:        uuid.NewString(),
		SessionID: in.SessionID,
		EventKind: in.HookEventName,
		Project:   project,
		Title:     req.Title,
		Priority:  req.Priority,
		Outcome:   map[string]bool(outcome),
		CreatedAt: time.Now(),
	}
	if err := r.history.Record(d); err != nil {
		slog.Warn("recording delivery failed", "error", err)
	}
}

// projectName derives the display name from the working directory's leaf
// path component.
func projectName(cwd string) string {
	base := filepath.Base(filepath.Clean(cwd))
	if cwd == "" || base == "." || base == string(filepath.Separator) {
		return "Unknown Project"
	}
	return strings.TrimSpace(base)
}
