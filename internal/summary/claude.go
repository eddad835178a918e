package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const instruction = "Summarize this conversation in one concise sentence (max 15 words):"

// ClaudeSummarizer runs the Claude Code CLI in print mode to summarize a
// transcript. The CLI is treated as an opaque text-generation tool: prompt in
// on stdin, summary out on stdout, bounded by a hard timeout.
type ClaudeSummarizer struct {
	ClaudePath string
	WorkDir    string
	Timeout    time.Duration
	MaxLength  int
}

func (c *ClaudeSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", errors.New("empty transcript")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := fmt.Sprintf("%s\n\n%s\n\nSummary:", instruction, transcript)

	path := c.ClaudePath
	if path == "" {
		path = "claude"
	}

	cmd := exec.CommandContext(ctx, path, "-p")
	cmd.Stdin = strings.NewReader(prompt)
	if c.WorkDir != "" {
		cmd.Dir = c.WorkDir
	}

	start := time.Now()
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			slog.Debug("claude summarize stderr", "stderr", truncate(string(exitErr.Stderr), 500))
			return "", fmt.Errorf("claude exited with code %d: %w", exitErr.ExitCode(), err)
		}
		return "", fmt.Errorf("running claude: %w", err)
	}

	summary := strings.TrimSpace(string(out))
	if summary == "" {
		return "", errors.New("claude produced empty output")
	}
	if c.MaxLength > 0 && len(summary) >= c.MaxLength {
		return "", fmt.Errorf("summary too long (%d chars)", len(summary))
	}

	slog.Debug("claude summarize completed", "duration", time.Since(start), "chars", len(summary))
	return summary, nil
}
