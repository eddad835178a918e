package notify

import (
	"log/slog"
	"os"
	"path/filepath"
)

// sentinelNames maps each channel to its opt-out file. The file's mere
// presence in the project working directory disables the channel; its
// contents are never read.
var sentinelNames = map[string]string{
	ChannelPushover: ".no-pushover",
	ChannelDesktop:  ".no-desktop",
}

// Disabled reports whether the channel is suppressed for the project at
// workingDir. A stat failure counts as "not disabled": a transient
// filesystem error must never silence notifications.
func Disabled(workingDir, channel string) bool {
	name, ok := sentinelNames[channel]
	if !ok || workingDir == "" {
		return false
	}

	path := filepath.Join(workingDir, name)
	if _, err := os.Stat(path); err != nil {
		return false
	}

	slog.Info("channel disabled by sentinel file", "channel", channel, "path", path)
	return true
}
