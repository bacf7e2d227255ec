// Package store persists the forum state as whole-file JSON arrays:
// messages.json, polls.json and user_preferences.json under the data dir.
// Every operation is a read-modify-write of one full array. Each collection
// is guarded by a single-writer mutex so concurrent increments against the
// same file cannot race; there is still no atomic rename, so a crash
// mid-write can corrupt a file (corrupt files are then read as empty).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"anonymchat/pkg/logger"
)

const (
	KindMessages    = "messages"
	KindPolls       = "polls"
	KindPreferences = "user_preferences"
)

type collection struct {
	mu   sync.Mutex
	kind string
	path string
}

var (
	dataDir  string
	messages collection
	polls    collection
	prefs    collection
)

// Open prepares the data directory and binds the collection files. It keeps
// a global handle for simple usage in this package, mirroring how the rest
// of the server treats the store as ambient state.
func Open(dir string) error {
	if dir == "" {
		return fmt.Errorf("empty data dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("store_open_failed", "dir", dir, "error", err)
		return err
	}
	dataDir = dir
	messages = collection{kind: KindMessages, path: filepath.Join(dir, "messages.json")}
	polls = collection{kind: KindPolls, path: filepath.Join(dir, "polls.json")}
	prefs = collection{kind: KindPreferences, path: filepath.Join(dir, "user_preferences.json")}
	logger.Info("store_opened", "dir", dir)
	return nil
}

// Ready reports whether the store has been opened.
func Ready() bool { return dataDir != "" }

// Close releases the global handle. Files need no closing; this exists so
// tests can reopen cleanly.
func Close() error {
	dataDir = ""
	return nil
}

// load reads the collection file into v (a pointer to a slice). A missing
// or empty file yields an empty slice. A parse failure is logged and also
// yields an empty slice: the next write will overwrite the corrupt file
// with fresh data, discarding whatever was unparseable.
func (c *collection) load(v interface{}) error {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		storeErrors.WithLabelValues(c.kind, "read").Inc()
		return err
	}
	storeReads.WithLabelValues(c.kind).Inc()
	if strings.TrimSpace(string(b)) == "" {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		storeParseFailures.WithLabelValues(c.kind).Inc()
		logger.Error("store_parse_failed", "kind", c.kind, "path", c.path, "error", err)
		return nil
	}
	return nil
}

// save serializes the whole array and overwrites the file in one shot.
// Pretty-printed to match the historical on-disk format.
func (c *collection) save(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		storeErrors.WithLabelValues(c.kind, "marshal").Inc()
		return fmt.Errorf("failed to marshal %s: %w", c.kind, err)
	}
	if err := os.WriteFile(c.path, b, 0o644); err != nil {
		storeErrors.WithLabelValues(c.kind, "write").Inc()
		logger.Error("store_write_failed", "kind", c.kind, "path", c.path, "error", err)
		return err
	}
	storeWrites.WithLabelValues(c.kind).Inc()
	return nil
}

// newerThan orders ISO-8601 timestamps newest-first. Timestamps are written
// by this server in RFC3339 form; if either side fails to parse we fall
// back to a string compare, which sorts identically for UTC ISO strings.
func newerThan(a, b string) bool {
	ta, ea := time.Parse(time.RFC3339Nano, a)
	tb, eb := time.Parse(time.RFC3339Nano, b)
	if ea == nil && eb == nil {
		return ta.After(tb)
	}
	return a > b
}
