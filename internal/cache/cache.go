// Package cache persists per-session prompt snippets between hook
// invocations. One newline-delimited JSON file per session; appended on every
// prompt, read back and deleted when the session stops.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one cached prompt record.
type Entry struct {
	Type      string `json:"type"`
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
}

const entryType = "user_prompt_submit"

// Store reads and writes session cache files under a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at cacheDir, resolved against workingDir
// when relative.
func NewStore(workingDir, cacheDir string) *Store {
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(workingDir, cacheDir)
	}
	return &Store{dir: cacheDir}
}

// Path returns the cache file location for a session.
func (s *Store) Path(sessionID string) string {
	return filepath.Join(s.dir, "session-"+sessionID+".jsonl")
}

// Append records one submitted prompt for the session, creating the cache
// directory and file as needed. The file is only ever opened in append mode
// so a concurrent invocation cannot truncate earlier entries.
func (s *Store) Append(sessionID, prompt, timestamp string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	line, err := json.Marshal(Entry{Type: entryType, Prompt: prompt, Timestamp: timestamp})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	f, err := os.OpenFile(s.Path(sessionID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

// ReadAndClear returns all cached entries for the session in insertion order
// and deletes the cache file. Every failure mode degrades to "no entries":
// a missing file, an unreadable file, or individual corrupt lines must never
// block the notification that follows.
func (s *Store) ReadAndClear(sessionID string) []Entry {
	path := s.Path(sessionID)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache read failed", "session_id", sessionID, "error", err)
		}
		return nil
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			slog.Debug("skipping corrupt cache line", "session_id", sessionID, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	if err := os.Remove(path); err != nil {
		slog.Warn("cache cleanup failed", "path", path, "error", err)
	}

	return entries
}
