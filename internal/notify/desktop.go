package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/kolapsis/chime/internal/config"
)

// DesktopSender shows a local toast notification using the platform's native
// mechanism: notify-send on Linux, osascript on macOS, a PowerShell toast on
// Windows. Unsupported platforms fail immediately without spawning anything.
type DesktopSender struct {
	cfg  config.DesktopConfig
	goos string
}

// NewDesktopSender creates a sender for the current platform.
func NewDesktopSender(cfg config.DesktopConfig) *DesktopSender {
	return &DesktopSender{cfg: cfg, goos: runtime.GOOS}
}

func (s *DesktopSender) Name() string { return ChannelDesktop }

func (s *DesktopSender) Send(ctx context.Context, req Request) bool {
	name, args, ok := toastCommand(s.goos, req.Title, unescapeNewlines(req.Message))
	if !ok {
		slog.Debug("desktop notifications unsupported on platform", "goos", s.goos)
		return false
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Warn("desktop notification failed",
			"command", name,
			"error", err,
			"output", truncate(string(out), 200))
		return false
	}

	slog.Info("desktop notification shown", "command", name)
	return true
}

// DesktopSupported reports whether the current platform has a toast
// mechanism. Used by diagnostics only.
func DesktopSupported() bool {
	_, _, ok := toastCommand(runtime.GOOS, "", "")
	return ok
}

// toastCommand builds the platform invocation. ok is false when the platform
// has no supported toast mechanism.
func toastCommand(goos, title, message string) (name string, args []string, ok bool) {
	switch goos {
	case "linux":
		// Arguments pass through exec directly, no shell, no escaping needed.
		return "notify-send", []string{title, message}, true

	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			escapeAppleScript(message), escapeAppleScript(title))
		return "osascript", []string{"-e", script}, true

	case "windows":
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command",
			powershellToast(title, message)}, true

	default:
		return "", nil, false
	}
}

// escapeAppleScript escapes characters that would terminate an AppleScript
// string literal.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// escapePowerShell escapes a value for a single-quoted PowerShell string,
// where only the quote character itself is special.
func escapePowerShell(s string) string {
	return strings.ReplaceAll(s, `'`, `''`)
}

// powershellToast renders the WinRT toast script with title and message
// inlined as single-quoted literals.
func powershellToast(title, message string) string {
	return fmt.Sprintf(`$title = '%s'
$message = '%s'
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
$xml = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$xml.GetElementsByTagName('text').Item(0).AppendChild($xml.CreateTextNode($title)) | Out-Null
$xml.GetElementsByTagName('text').Item(1).AppendChild($xml.CreateTextNode($message)) | Out-Null
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('Claude Code').Show([Windows.UI.Notifications.ToastNotification]::new($xml))`,
		escapePowerShell(title), escapePowerShell(message))
}
