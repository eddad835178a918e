package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kolapsis/chime/internal/config"
)

// PushoverSender delivers notifications through the Pushover HTTP API.
// Credentials are injected at construction; the sender never reads the
// environment itself.
type PushoverSender struct {
	cfg    config.PushoverConfig
	client *http.Client
}

// NewPushoverSender creates a sender with its own HTTP client bounded by the
// configured timeout.
func NewPushoverSender(cfg config.PushoverConfig) *PushoverSender {
	return &PushoverSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *PushoverSender) Name() string { return ChannelPushover }

// pushoverResponse is the subset of the API response we act on. The API
// reports status 1 on success regardless of HTTP code nuances.
type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

func (s *PushoverSender) Send(ctx context.Context, req Request) bool {
	if s.cfg.Token == "" || s.cfg.User == "" {
		// Distinct from a transient network failure: the operator has to fix
		// configuration, not wait it out.
		slog.Error("pushover not configured",
			"has_token", s.cfg.Token != "",
			"has_user", s.cfg.User != "")
		return false
	}

	form := url.Values{}
	form.Set("token", s.cfg.Token)
	form.Set("user", s.cfg.User)
	form.Set("title", req.Title)
	form.Set("message", unescapeNewlines(req.Message))
	form.Set("priority", strconv.Itoa(req.Priority))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		slog.Error("pushover request build failed", "error", err)
		return false
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		slog.Error("pushover request failed", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		slog.Warn("pushover response read failed", "status", resp.StatusCode, "error", err)
		return resp.StatusCode == http.StatusOK
	}

	var parsed pushoverResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		slog.Warn("pushover response not JSON", "status", resp.StatusCode, "body", truncate(string(body), 200))
		return resp.StatusCode == http.StatusOK
	}

	if parsed.Status != 1 {
		slog.Error("pushover rejected message",
			"status", resp.StatusCode,
			"api_errors", strings.Join(parsed.Errors, "; "))
		return false
	}

	slog.Info("pushover delivered", "request_id", parsed.Request)
	return true
}

// unescapeNewlines converts literal \n sequences into real newlines so
// multi-line messages render as separate lines in the notification.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
