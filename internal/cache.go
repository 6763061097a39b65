package internal

import (
	"crypto/md5"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cacheFileName = "expand_cache.gob"

// stamp identifies one version of a file.
type stamp struct {
	Hash    string
	ModTime time.Time
}

func (s stamp) matches(other stamp) bool {
	return s.Hash == other.Hash && s.ModTime.Equal(other.ModTime)
}

// Expansion is the remembered output of one template.
type Expansion struct {
	Template  stamp
	Output    []byte
	CreatedAt time.Time
	UsedAt    time.Time
}

// snapshot is what gets written to disk.
type snapshot struct {
	Expansions   map[string]Expansion
	Dependencies map[string]string
}

// Cache remembers the expansion of templates between runs. An entry is
// valid while its template is unchanged and none of the dependency files
// (typically the configuration) changed since it was stored.
type Cache struct {
	CacheDir string

	mu           sync.Mutex
	expansions   map[string]Expansion
	dependencies []string
	depHashes    map[string]string
	maxAge       time.Duration
}

// NewCache opens the cache stored in cacheDir, creating the directory if
// needed. Stored expansions are dropped when a dependency changed.
func NewCache(cacheDir string, dependencies ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		CacheDir:     cacheDir,
		expansions:   make(map[string]Expansion),
		dependencies: dependencies,
		depHashes:    make(map[string]string),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	if c.dependenciesChanged() {
		c.expansions = make(map[string]Expansion)
		for _, dep := range c.dependencies {
			st, err := stampFile(dep)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to hash %s: %w", dep, err)
			}
			c.depHashes[dep] = st.Hash
		}
	}
	return c, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	f, err := os.Open(c.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	if snap.Expansions != nil {
		c.expansions = snap.Expansions
	}
	if snap.Dependencies != nil {
		c.depHashes = snap.Dependencies
	}
	return nil
}

// save must be called with c.mu held.
func (c *Cache) save() error {
	f, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snapshot{Expansions: c.expansions, Dependencies: c.depHashes}); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Set stores output as the expansion of the template at path.
func (c *Cache) Set(path string, output []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := stampFile(path)
	if err != nil {
		return fmt.Errorf("failed to stamp template: %w", err)
	}

	now := time.Now()
	c.expansions[path] = Expansion{Template: st, Output: output, CreatedAt: now, UsedAt: now}
	return c.save()
}

// Get returns the stored expansion of the template at path if it is still
// valid. Invalid entries are forgotten.
func (c *Cache) Get(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.expansions[path]
	if !ok {
		return nil, false
	}
	if !c.valid(path, exp) {
		delete(c.expansions, path)
		return nil, false
	}

	exp.UsedAt = time.Now()
	c.expansions[path] = exp
	return exp.Output, true
}

func (c *Cache) valid(path string, exp Expansion) bool {
	if c.maxAge > 0 && time.Since(exp.CreatedAt) > c.maxAge {
		return false
	}
	st, err := stampFile(path)
	if err != nil || !st.matches(exp.Template) {
		return false
	}
	return !c.dependenciesChanged()
}

func (c *Cache) dependenciesChanged() bool {
	for _, dep := range c.dependencies {
		// a missing dependency hashes to "", like when it was recorded
		st, _ := stampFile(dep)
		if st.Hash != c.depHashes[dep] {
			return true
		}
	}
	return false
}

// SetMaxAge makes entries older than d invalid. Zero disables expiry.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxAge = d
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expansions = make(map[string]Expansion)
	return c.save()
}

// stampFile hashes the content of path and records its modification time.
func stampFile(path string) (stamp, error) {
	f, err := os.Open(path)
	if err != nil {
		return stamp{}, err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return stamp{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		return stamp{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return stamp{Hash: fmt.Sprintf("%x", h.Sum(nil)), ModTime: info.ModTime()}, nil
}
