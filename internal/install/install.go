// Package install deploys the chime binary into a target project and wires
// it into Claude Code's hook configuration.
package install

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// hookEvents are the lifecycle events chime subscribes to.
var hookEvents = []string{"UserPromptSubmit", "Stop", "Notification"}

// hookTimeoutSeconds is the per-invocation budget advertised to Claude Code.
// It must exceed the dispatcher ceiling plus the summarization timeout.
const hookTimeoutSeconds = 60

// Options controls one install run.
type Options struct {
	TargetDir string
	Version   string
	Revision  string

	// ExecutablePath overrides the binary to copy; defaults to the running
	// executable.
	ExecutablePath string
}

// Action describes what an install run did.
type Action string

const (
	ActionFresh     Action = "fresh install"
	ActionUpgrade   Action = "upgrade"
	ActionReinstall Action = "reinstall"
)

// VersionInfo is the VERSION descriptor written next to the installed binary.
type VersionInfo struct {
	Version     string
	InstalledAt string
	Revision    string
}

// HookDir returns the installation directory inside a target project.
func HookDir(targetDir string) string {
	return filepath.Join(targetDir, ".claude", "hooks", "chime")
}

// InstalledVersion reads the version of an existing installation, or ""
// when none is present.
func InstalledVersion(targetDir string) string {
	info, err := ReadVersion(targetDir)
	if err != nil {
		return ""
	}
	return info.Version
}

// ReadVersion parses the VERSION descriptor of an existing installation.
func ReadVersion(targetDir string) (*VersionInfo, error) {
	data, err := os.ReadFile(filepath.Join(HookDir(targetDir), "VERSION"))
	if err != nil {
		return nil, fmt.Errorf("reading VERSION: %w", err)
	}

	info := &VersionInfo{}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "version":
			info.Version = value
		case "installed_at":
			info.InstalledAt = value
		case "git_commit":
			info.Revision = value
		}
	}
	return info, nil
}

// Run installs or upgrades chime in the target project: copies the binary,
// writes the VERSION descriptor and merges the hook wiring into
// .claude/settings.json (backing the old file up first).
func Run(opts Options) (Action, error) {
	target, err := filepath.Abs(opts.TargetDir)
	if err != nil {
		return "", fmt.Errorf("resolving target directory: %w", err)
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("target directory not usable: %w", err)
	}

	action := determineAction(target, opts.Version)

	hookDir := HookDir(target)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		return "", fmt.Errorf("creating hook directory: %w", err)
	}

	src := opts.ExecutablePath
	if src == "" {
		src, err = os.Executable()
		if err != nil {
			return "", fmt.Errorf("locating running executable: %w", err)
		}
	}

	if err := copyBinary(src, filepath.Join(hookDir, binaryName())); err != nil {
		return "", err
	}

	if err := writeVersionFile(hookDir, opts.Version, opts.Revision); err != nil {
		slog.Warn("writing VERSION failed", "error", err)
	}

	if err := mergeSettings(target); err != nil {
		return "", fmt.Errorf("updating settings.json: %w", err)
	}

	slog.Info("install completed", "target", target, "action", string(action), "version", opts.Version)
	return action, nil
}

func determineAction(target, version string) Action {
	installed := InstalledVersion(target)
	switch {
	case installed == "":
		return ActionFresh
	case installed != version:
		return ActionUpgrade
	default:
		return ActionReinstall
	}
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "chime.exe"
	}
	return "chime"
}

func copyBinary(src, dst string) error {
	data, err := os.ReadFile(src) //nolint:gosec // src is the running executable or an explicit override
	if err != nil {
		return fmt.Errorf("reading source binary: %w", err)
	}

	// Write to a temp name then rename, so a running hook never sees a
	// half-written binary.
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0755); err != nil { //nolint:gosec // must be executable
		return fmt.Errorf("writing binary: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("installing binary: %w", err)
	}
	return nil
}

func writeVersionFile(hookDir, version, revision string) error {
	if version == "" {
		version = "dev"
	}
	if revision == "" {
		revision = "unknown"
	}
	content := fmt.Sprintf("version=%s\ninstalled_at=%s\ngit_commit=%s\n",
		version, time.Now().UTC().Format(time.RFC3339), revision)
	return os.WriteFile(filepath.Join(hookDir, "VERSION"), []byte(content), 0644)
}

// hookCommand builds the settings.json command line. CLAUDE_PROJECT_DIR
// keeps the path portable across checkouts of the same project.
func hookCommand() string {
	if runtime.GOOS == "windows" {
		return `"%CLAUDE_PROJECT_DIR%\.claude\hooks\chime\chime.exe" hook`
	}
	return `"$CLAUDE_PROJECT_DIR/.claude/hooks/chime/chime" hook`
}

// chimeMarker identifies hook entries owned by chime inside settings.json.
const chimeMarker = "hooks/chime"

func mergeSettings(target string) error {
	claudeDir := filepath.Join(target, ".claude")
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		return fmt.Errorf("creating .claude directory: %w", err)
	}

	settingsPath := filepath.Join(claudeDir, "settings.json")
	settings := map[string]any{}

	data, err := os.ReadFile(settingsPath)
	switch {
	case os.IsNotExist(err):
		// fresh settings
	case err != nil:
		return fmt.Errorf("reading settings: %w", err)
	default:
		if err := backupSettings(settingsPath, data); err != nil {
			return err
		}
		if jsonErr := json.Unmarshal(data, &settings); jsonErr != nil {
			slog.Warn("existing settings.json unparseable, starting fresh", "error", jsonErr)
			settings = map[string]any{}
		}
	}

	mergeHooks(settings)

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func backupSettings(settingsPath string, data []byte) error {
	backup := settingsPath + ".backup_" + time.Now().Format("20060102_150405")
	if err := os.WriteFile(backup, data, 0644); err != nil {
		return fmt.Errorf("backing up settings: %w", err)
	}
	slog.Info("settings.json backed up", "path", backup)
	return nil
}

// mergeHooks replaces chime's own entries for each subscribed event and
// leaves every other hook untouched.
func mergeHooks(settings map[string]any) {
	hooks, _ := settings["hooks"].(map[string]any)
	if hooks == nil {
		hooks = map[string]any{}
	}

	entry := map[string]any{
		"hooks": []any{
			map[string]any{
				"type":    "command",
				"command": hookCommand(),
				"timeout": hookTimeoutSeconds,
			},
		},
	}

	for _, event := range hookEvents {
		existing, _ := hooks[event].([]any)
		var kept []any
		for _, e := range existing {
			if !isChimeEntry(e) {
				kept = append(kept, e)
			}
		}
		hooks[event] = append(kept, entry)
	}

	settings["hooks"] = hooks
}

func isChimeEntry(entry any) bool {
	m, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	list, _ := m["hooks"].([]any)
	for _, h := range list {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hm["command"].(string); ok && strings.Contains(cmd, chimeMarker) {
			return true
		}
	}
	return false
}
