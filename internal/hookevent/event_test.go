package hookevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PromptSubmitted(t *testing.T) {
	t.Parallel()

	raw := `{
		"hook_event_name": "UserPromptSubmit",
		"session_id": "ses_abc",
		"cwd": "/home/dev/my-api",
		"prompt": "fix the flaky test",
		"timestamp": "2026-08-31T10:00:00Z"
	}`

	in, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, KindPromptSubmitted, in.Kind())
	assert.Equal(t, "ses_abc", in.SessionID)
	assert.Equal(t, "/home/dev/my-api", in.Cwd)
	assert.Equal(t, "fix the flaky test", in.Prompt)
}

func TestParse_UnknownEventKind(t *testing.T) {
	t.Parallel()

	in, err := Parse([]byte(`{"hook_event_name": "PreToolUse", "session_id": "s"}`))
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, in.Kind())
}

func TestParse_TruncatedJSON(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"hook_event_name": "Stop", "session`))
	assert.Error(t, err)
}

func TestParse_RetriesWindowsPaths(t *testing.T) {
	t.Parallel()

	// Unescaped backslashes make the first decode fail; the retry escapes them.
	raw := `{"hook_event_name": "Stop", "session_id": "s1", "cwd": "C:\Users\dev\my-api"}`

	in, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, KindSessionStopped, in.Kind())
	assert.Equal(t, `C:\Users\dev\my-api`, in.Cwd)
}

func TestDetails_ResolvesBodyVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "flat message preferred",
			raw:  `{"hook_event_name":"Notification","message":"Claude needs permission","body":"ignored"}`,
			want: "Claude needs permission",
		},
		{
			name: "text body",
			raw:  `{"hook_event_name":"Notification","body":"waiting for approval"}`,
			want: "waiting for approval",
		},
		{
			name: "structured body with text",
			raw:  `{"hook_event_name":"Notification","body":{"text":"tool blocked","level":"warn"}}`,
			want: "tool blocked",
		},
		{
			name: "empty structured body",
			raw:  `{"hook_event_name":"Notification","body":{}}`,
			want: "No additional details provided",
		},
		{
			name: "absent body",
			raw:  `{"hook_event_name":"Notification"}`,
			want: "No additional details provided",
		},
		{
			name: "whitespace message",
			raw:  `{"hook_event_name":"Notification","message":"   "}`,
			want: "No additional details provided",
		},
		{
			name: "empty object message",
			raw:  `{"hook_event_name":"Notification","message":{}}`,
			want: "No additional details provided",
		},
		{
			name: "object message with text",
			raw:  `{"hook_event_name":"Notification","message":{"text":"session idle"}}`,
			want: "session idle",
		},
		{
			name: "empty object message falls back to body",
			raw:  `{"hook_event_name":"Notification","message":{},"body":"waiting for approval"}`,
			want: "waiting for approval",
		},
		{
			name: "unrecognized body shape",
			raw:  `{"hook_event_name":"Notification","body":[1,2]}`,
			want: "No additional details provided",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in, err := Parse([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Details())
		})
	}
}

func TestBody_Absent(t *testing.T) {
	t.Parallel()

	in, err := Parse([]byte(`{"hook_event_name":"Notification"}`))
	require.NoError(t, err)
	assert.True(t, in.Body.Absent())

	in, err = Parse([]byte(`{"hook_event_name":"Notification","body":"x"}`))
	require.NoError(t, err)
	assert.False(t, in.Body.Absent())
}
