package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// datedPattern matches rotated siblings of a log file: <stem>.<date>.log.
var datedPattern = regexp.MustCompile(`^(.+)\.(\d{4}-\d{2}-\d{2})\.log$`)

// Housekeep rotates the live log when it grows past maxSize and prunes dated
// siblings older than the retention window. Runs opportunistically at hook
// start; every failure is swallowed after logging.
func Housekeep(file string, maxSize int64, retentionDays int) {
	rotate(file, maxSize)
	cleanupOld(file, retentionDays)
}

// rotate renames the live file to a dated sibling when oversized. An
// existing sibling for today means rotation already happened; skip rather
// than clobber it.
func rotate(file string, maxSize int64) {
	if maxSize <= 0 {
		return
	}

	info, err := os.Stat(file)
	if err != nil || info.Size() < maxSize {
		return
	}

	dated := datedName(file, time.Now())
	if _, err := os.Stat(dated); err == nil {
		return
	}

	if err := os.Rename(file, dated); err != nil {
		slog.Warn("log rotation failed", "file", file, "error", err)
		return
	}
	slog.Info("log rotated", "from", file, "to", dated)
}

// cleanupOld deletes dated siblings past the retention window. The live file
// and names not matching the dated pattern are never touched.
func cleanupOld(file string, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	dir := filepath.Dir(file)
	stem := logStem(file)
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := datedPattern.FindStringSubmatch(e.Name())
		if m == nil || m[1] != stem {
			continue
		}
		date, err := time.Parse("2006-01-02", m[2])
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			path := filepath.Join(dir, e.Name())
			if err := os.Remove(path); err == nil {
				slog.Debug("pruned old log", "path", path)
			}
		}
	}
}

func datedName(file string, now time.Time) string {
	return filepath.Join(filepath.Dir(file),
		fmt.Sprintf("%s.%s.log", logStem(file), now.Format("2006-01-02")))
}

func logStem(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
