// Package cache persists the fact collection of a workspace together with
// a fingerprint of its repos, and skips extraction when nothing changed.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/facts"
)

const (
	// Version is the payload schema version.
	Version = 1
	// FileName is the cache file inside the cache directory.
	FileName = "index.json"
)

// Payload is the on-disk cache document.
type Payload struct {
	Version    int              `json:"version"`
	IndexedAt  string           `json:"indexedAt"`
	RepoMTimes map[string]int64 `json:"repoMTimes"`
	Entries    []facts.Entry    `json:"entries"`
}

// Path returns the cache file path for a cache directory.
func Path(cacheDir string) string {
	return filepath.Join(cacheDir, FileName)
}

// Load reads a payload. A missing file returns nil, nil; an unreadable or
// malformed one returns an error, which callers treat as a miss.
func Load(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache %s: %w", path, err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding cache %s: %w", path, err)
	}
	if p.Entries == nil {
		return nil, fmt.Errorf("decoding cache %s: no entries", path)
	}
	if p.Version == 0 {
		p.Version = Version
	}
	if p.RepoMTimes == nil {
		p.RepoMTimes = map[string]int64{}
	}
	return &p, nil
}

// Save writes a payload through a temporary file so readers never see a
// partial document.
func Save(path string, entries []facts.Entry, mtimes map[string]int64, now time.Time) error {
	if entries == nil {
		entries = []facts.Entry{}
	}
	data, err := json.Marshal(Payload{
		Version:    Version,
		IndexedAt:  now.UTC().Format(time.RFC3339),
		RepoMTimes: mtimes,
		Entries:    entries,
	})
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}

// Fingerprint maps each repo id to its directory modification time in
// nanoseconds. Repos whose directory cannot be read are left out.
func Fingerprint(repos []discovery.Repo) map[string]int64 {
	out := make(map[string]int64, len(repos))
	for _, r := range repos {
		info, err := os.Stat(r.Path)
		if err != nil {
			continue
		}
		out[r.ID] = info.ModTime().UnixNano()
	}
	return out
}

// SameFingerprint reports whether both maps hold the same repo ids with
// the same modification times.
func SameFingerprint(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for id, t := range a {
		if bt, ok := b[id]; !ok || bt != t {
			return false
		}
	}
	return true
}
