// Package summary turns cached session prompts into a one-line human summary.
// AI summarization via the Claude CLI is an enhancement, never a dependency:
// every failure path lands on a deterministic fallback.
package summary

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kolapsis/chime/internal/cache"
)

// Placeholder is returned when a session stopped without any cached prompts.
const Placeholder = "No additional details provided"

// fallbackLimit caps the length of a fallback summary taken from a raw prompt.
const fallbackLimit = 100

// Summarizer produces a one-line summary of a conversation transcript.
// Injectable so tests can substitute a stub instead of spawning a process.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Generate derives a summary from the cached entries. Order of preference:
// the Summarizer's output, the most recent non-empty prompt (truncated), the
// fixed placeholder. Never fails and never returns an empty string.
func Generate(ctx context.Context, s Summarizer, entries []cache.Entry) string {
	if len(entries) == 0 {
		return Placeholder
	}

	if s != nil {
		out, err := s.Summarize(ctx, Transcript(entries))
		switch {
		case err != nil:
			slog.Info("summarization unavailable, using fallback", "error", err)
		case strings.TrimSpace(out) == "":
			// The never-empty guarantee cannot depend on a Summarizer
			// implementation holding up its end.
			slog.Info("summarizer returned empty output, using fallback")
		default:
			return strings.TrimSpace(out)
		}
	}

	return fallback(entries)
}

// Transcript concatenates the cached prompts, oldest first.
func Transcript(entries []cache.Entry) string {
	prompts := make([]string, 0, len(entries))
	for _, e := range entries {
		prompts = append(prompts, e.Prompt)
	}
	return strings.Join(prompts, "\n")
}

// fallback picks the most recent entry with a non-empty prompt.
func fallback(entries []cache.Entry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(entries[i].Prompt); text != "" {
			return truncate(text, fallbackLimit)
		}
	}
	return Placeholder
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
