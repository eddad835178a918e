package hook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/chime/internal/cache"
	"github.com/kolapsis/chime/internal/config"
	"github.com/kolapsis/chime/internal/notify"
	"github.com/kolapsis/chime/internal/store"
)

// fakeDispatcher records requests instead of sending anything.
type fakeDispatcher struct {
	requests []notify.Request
	outcome  notify.Outcome
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req notify.Request) notify.Outcome {
	f.requests = append(f.requests, req)
	if f.outcome != nil {
		return f.outcome
	}
	return notify.Outcome{notify.ChannelPushover: true, notify.ChannelDesktop: true}
}

// fixedSummarizer returns a canned summary, or an error when out is empty.
type fixedSummarizer struct {
	out        string
	transcript string
}

func (s *fixedSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	s.transcript = transcript
	if s.out == "" {
		return "", errors.New("unavailable")
	}
	return s.out, nil
}

func newTestRunner(t *testing.T) (*Runner, *fakeDispatcher, *fixedSummarizer, string) {
	t.Helper()
	cwd := t.TempDir()
	d := &fakeDispatcher{}
	s := &fixedSummarizer{out: "Fixed the login bug"}
	r := NewRunner(config.Defaults(), s, d, nil)
	return r, d, s, cwd
}

func promptEvent(cwd, sessionID, prompt string) []byte {
	return fmt.Appendf(nil,
		`{"hook_event_name":"UserPromptSubmit","session_id":%q,"cwd":%q,"prompt":%q,"timestamp":"2026-08-31T10:00:00Z"}`,
		sessionID, cwd, prompt)
}

func stopEvent(cwd, sessionID string) []byte {
	return fmt.Appendf(nil,
		`{"hook_event_name":"Stop","session_id":%q,"cwd":%q}`, sessionID, cwd)
}

func TestRun_PromptSubmitted_CachesWithoutDispatching(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	r.Run(context.Background(), promptEvent(cwd, "ses_1", "add retries"))

	assert.Empty(t, d.requests, "prompt submission must not notify")

	entries := cache.NewStore(cwd, ".claude/cache").ReadAndClear("ses_1")
	require.Len(t, entries, 1)
	assert.Equal(t, "add retries", entries[0].Prompt)
}

func TestRun_RoundTrip_PromptsThenStop(t *testing.T) {
	t.Parallel()

	r, d, s, cwd := newTestRunner(t)

	r.Run(context.Background(), promptEvent(cwd, "ses_rt", "prompt one"))
	r.Run(context.Background(), promptEvent(cwd, "ses_rt", "prompt two"))
	r.Run(context.Background(), promptEvent(cwd, "ses_rt", "prompt three"))
	r.Run(context.Background(), stopEvent(cwd, "ses_rt"))

	// The summarizer saw exactly the cached prompts, in order.
	assert.Equal(t, "prompt one\nprompt two\nprompt three", s.transcript)

	require.Len(t, d.requests, 1)
	req := d.requests[0]
	assert.Contains(t, req.Title, "Task Complete")
	assert.Contains(t, req.Message, "Session: ses_rt")
	assert.Contains(t, req.Message, "Summary: Fixed the login bug")
	assert.Equal(t, 0, req.Priority)
	assert.Equal(t, cwd, req.WorkingDir)

	// Cache is cleared after the stop.
	assert.Empty(t, cache.NewStore(cwd, ".claude/cache").ReadAndClear("ses_rt"))
}

func TestRun_Stop_TitleUsesProjectLeaf(t *testing.T) {
	t.Parallel()

	r, d, _, _ := newTestRunner(t)
	cwd := t.TempDir() + "/my-api"
	require.NoError(t, os.MkdirAll(cwd, 0755))

	r.Run(context.Background(), stopEvent(cwd, "ses_p"))

	require.Len(t, d.requests, 1)
	assert.Equal(t, "[my-api] Task Complete", d.requests[0].Title)
}

func TestRun_Stop_NoCachedPromptsUsesPlaceholder(t *testing.T) {
	t.Parallel()

	r, d, s, cwd := newTestRunner(t)
	s.out = "" // summarizer unavailable

	r.Run(context.Background(), stopEvent(cwd, "ses_empty"))

	require.Len(t, d.requests, 1)
	assert.Contains(t, d.requests[0].Message, "Summary: No additional details provided")
}

func TestRun_Notification_IdlePromptFiltered(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	raw := fmt.Appendf(nil,
		`{"hook_event_name":"Notification","session_id":"ses_i","cwd":%q,"notification_type":"idle_prompt","message":"waiting"}`, cwd)
	r.Run(context.Background(), raw)

	assert.Empty(t, d.requests, "idle_prompt must never reach dispatch")
}

func TestRun_Notification_EscalatesWithDetails(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	raw := fmt.Appendf(nil,
		`{"hook_event_name":"Notification","session_id":"ses_n","cwd":%q,"notification_type":"permission_request","message":"Claude needs permission to run git push"}`, cwd)
	r.Run(context.Background(), raw)

	require.Len(t, d.requests, 1)
	req := d.requests[0]
	assert.Contains(t, req.Title, "Attention Needed")
	assert.Contains(t, req.Message, "Type: permission_request")
	assert.Contains(t, req.Message, "Claude needs permission to run git push")
	assert.Equal(t, 1, req.Priority)
}

func TestRun_Notification_EmptyBodyRendersPlaceholder(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	raw := fmt.Appendf(nil,
		`{"hook_event_name":"Notification","session_id":"ses_b","cwd":%q,"notification_type":"permission_request","body":{}}`, cwd)
	r.Run(context.Background(), raw)

	require.Len(t, d.requests, 1)
	assert.Contains(t, d.requests[0].Message, "No additional details provided")
	assert.NotContains(t, d.requests[0].Message, "{}")
}

func TestRun_Notification_ObjectMessageRendersPlaceholder(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	// Claude Code may send message as an object instead of a string. The
	// event must still dispatch, degrading to the placeholder.
	raw := fmt.Appendf(nil,
		`{"hook_event_name":"Notification","session_id":"ses_m","cwd":%q,"notification_type":"permission_request","message":{}}`, cwd)
	r.Run(context.Background(), raw)

	require.Len(t, d.requests, 1)
	assert.Contains(t, d.requests[0].Title, "Attention Needed")
	assert.Contains(t, d.requests[0].Message, "No additional details provided")
	assert.NotContains(t, d.requests[0].Message, "{}")
}

func TestRun_MalformedInputIsNoOp(t *testing.T) {
	t.Parallel()

	r, d, _, _ := newTestRunner(t)

	r.Run(context.Background(), []byte(`{"hook_event_name": "Stop", "ses`))
	r.Run(context.Background(), nil)

	assert.Empty(t, d.requests)
}

func TestRun_UnknownEventKindIsNoOp(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	raw := fmt.Appendf(nil,
		`{"hook_event_name":"PreToolUse","session_id":"ses_u","cwd":%q}`, cwd)
	r.Run(context.Background(), raw)

	assert.Empty(t, d.requests)
}

func TestRun_MissingSessionIDIsNoOp(t *testing.T) {
	t.Parallel()

	r, d, _, cwd := newTestRunner(t)

	raw := fmt.Appendf(nil, `{"hook_event_name":"Stop","cwd":%q}`, cwd)
	r.Run(context.Background(), raw)

	assert.Empty(t, d.requests)
}

func TestRun_Stop_RecordsDeliveryHistory(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	hist, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	d := &fakeDispatcher{outcome: notify.Outcome{notify.ChannelPushover: true, notify.ChannelDesktop: false}}
	r := NewRunner(config.Defaults(), &fixedSummarizer{out: "done"}, d, hist)

	r.Run(context.Background(), stopEvent(cwd, "ses_h"))

	got, err := hist.List(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ses_h", got[0].SessionID)
	assert.Equal(t, "Stop", got[0].EventKind)
	assert.Equal(t, map[string]bool{"pushover": true, "desktop": false}, got[0].Outcome)
	assert.NotEmpty(t, got[0].ID)
}

func TestProjectName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "my-api", projectName("/home/dev/my-api"))
	assert.Equal(t, "my-api", projectName("/home/dev/my-api/"))
	assert.Equal(t, "Unknown Project", projectName(""))
	assert.Equal(t, "Unknown Project", projectName("/"))
}
