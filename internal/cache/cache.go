// Package cache provides a file-backed TTL cache used to memoize generated
// SQL for repeated requests.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sqlpilot/sqlpilot/internal/errors"
)

// entry is the on-disk layout of one cached value.
type entry struct {
	Key       string    `json:"key"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Stats tracks hit and miss counts for the process lifetime.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// FileCache stores string values as JSON files under one directory, one file
// per key hash. Expired entries are dropped lazily on read and in Cleanup.
type FileCache struct {
	directory  string
	defaultTTL time.Duration

	mu    sync.Mutex
	stats Stats
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(directory string, defaultTTL time.Duration) (*FileCache, error) {
	if strings.HasPrefix(directory, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to resolve home directory")
		}

		directory = filepath.Join(home, directory[2:])
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to create cache directory")
	}

	return &FileCache{directory: directory, defaultTTL: defaultTTL}, nil
}

// Get returns the cached value for a key, or ok=false on miss or expiry.
func (c *FileCache) Get(key string) (string, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		c.miss()
		return "", false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = os.Remove(c.path(key))
		c.miss()

		return "", false
	}

	if time.Now().After(e.ExpiresAt) {
		_ = os.Remove(c.path(key))
		c.miss()

		return "", false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return e.Data, true
}

// Set stores a value under a key with the default TTL.
func (c *FileCache) Set(key, value string) error {
	now := time.Now()

	data, err := json.Marshal(entry{
		Key:       key,
		Data:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(c.defaultTTL),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeInternal, "failed to encode cache entry")
	}

	if err := os.WriteFile(c.path(key), data, 0600); err != nil {
		return errors.Wrap(err, errors.ErrTypeInternal, "failed to write cache entry")
	}

	return nil
}

// Clear removes every entry.
func (c *FileCache) Clear() error {
	files, err := filepath.Glob(filepath.Join(c.directory, "*.json"))
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return err
		}
	}

	return nil
}

// Cleanup removes expired entries.
func (c *FileCache) Cleanup() error {
	files, err := filepath.Glob(filepath.Join(c.directory, "*.json"))
	if err != nil {
		return err
	}

	now := time.Now()

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}

		var e entry
		if err := json.Unmarshal(data, &e); err != nil || now.After(e.ExpiresAt) {
			_ = os.Remove(f)
		}
	}

	return nil
}

// GetStats returns hit/miss counts since process start.
func (c *FileCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

func (c *FileCache) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

// path hashes the key so arbitrary prompt text maps to a safe filename.
func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.directory, hex.EncodeToString(sum[:])+".json")
}
