// Package hookevent models the JSON events Claude Code delivers to lifecycle
// hooks on stdin.
package hookevent

import (
	"encoding/json"
	"strings"
)

// Kind identifies the hook event branch.
type Kind string

const (
	KindPromptSubmitted Kind = "UserPromptSubmit"
	KindSessionStopped  Kind = "Stop"
	KindAttentionNeeded Kind = "Notification"
	KindUnknown         Kind = "unknown"
)

// noDetails is rendered whenever a Notification event carries no usable body.
const noDetails = "No additional details provided"

// Input is one hook invocation as read from stdin. Fields beyond the common
// trio (event name, session, cwd) are only populated for their event kind.
type Input struct {
	HookEventName    string `json:"hook_event_name"`
	SessionID        string `json:"session_id"`
	Cwd              string `json:"cwd"`
	Prompt           string `json:"prompt"`
	Timestamp        string `json:"timestamp"`
	NotificationType string `json:"notification_type"`
	Message          Body   `json:"message"`
	Body             Body   `json:"body"`
}

// Parse decodes a raw hook event. A decode failure is retried once with
// backslashes escaped: Claude Code on Windows emits unescaped path separators
// inside JSON strings.
func Parse(data []byte) (*Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		fixed := strings.ReplaceAll(string(data), `\`, `\\`)
		if retryErr := json.Unmarshal([]byte(fixed), &in); retryErr != nil {
			return nil, err
		}
	}
	return &in, nil
}

// Kind maps the wire event name onto a classifier branch.
func (in *Input) Kind() Kind {
	switch in.HookEventName {
	case string(KindPromptSubmitted):
		return KindPromptSubmitted
	case string(KindSessionStopped):
		return KindSessionStopped
	case string(KindAttentionNeeded):
		return KindAttentionNeeded
	default:
		return KindUnknown
	}
}

// Details resolves the notification payload to a display string. Preference
// order: the message field, then a textual body, then the "text" entry of a
// structured body. Both message and body arrive as a string, an object, or
// not at all; anything empty collapses to a fixed placeholder so the outgoing
// message never contains a literal {} or an empty line.
func (in *Input) Details() string {
	if s := strings.TrimSpace(in.Message.Text()); s != "" {
		return s
	}
	if s := strings.TrimSpace(in.Body.Text()); s != "" {
		return s
	}
	return noDetails
}

// bodyKind tags the decoded shape of a Notification body.
type bodyKind int

const (
	bodyAbsent bodyKind = iota
	bodyText
	bodyStructured
)

// Body is the Notification body field, which arrives as a string, an object,
// or not at all. The variant is resolved once at decode time.
type Body struct {
	kind   bodyKind
	text   string
	fields map[string]any
}

func (b *Body) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		b.kind = bodyAbsent
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.kind = bodyText
		b.text = s
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err == nil {
		b.kind = bodyStructured
		b.fields = m
		return nil
	}

	// Unrecognized shape (number, array). Treat as absent rather than fail
	// the whole event.
	b.kind = bodyAbsent
	return nil
}

// Text returns the body's display text, or "" when it has none.
func (b Body) Text() string {
	switch b.kind {
	case bodyText:
		return b.text
	case bodyStructured:
		if s, ok := b.fields["text"].(string); ok {
			return s
		}
		return ""
	default:
		return ""
	}
}

// Absent reports whether the body field was missing or unusable.
func (b Body) Absent() bool {
	return b.kind == bodyAbsent
}
