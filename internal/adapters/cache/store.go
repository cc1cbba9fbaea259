package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

// memoSize bounds the in-process copy of recently used entries
const memoSize = 256

// FileCache stores one transcript per video fingerprint under
// baseDir/<key>/meta.json, with recently used entries kept in memory.
type FileCache struct {
	fs      afero.Fs
	baseDir string
	memo    *lru.Cache[string, *ports.CachedItem]
}

// NewFileCache creates a cache rooted at baseDir. fs defaults to the OS
// filesystem.
func NewFileCache(fs afero.Fs, baseDir string) *FileCache {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	memo, _ := lru.New[string, *ports.CachedItem](memoSize)
	return &FileCache{
		fs:      fs,
		baseDir: baseDir,
		memo:    memo,
	}
}

type metaFile struct {
	Transcript *domain.Transcript `json:"transcript"`
	VideoPath  string             `json:"video_path"`
	CreatedAt  time.Time          `json:"created_at"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

func (c *FileCache) entryDir(key string) string {
	return filepath.Join(c.baseDir, key)
}

func (c *FileCache) metaPath(key string) string {
	return filepath.Join(c.entryDir(key), "meta.json")
}

// Get returns the entry for key, ErrCacheMiss when there is none and
// ErrCacheExpired when it is stale.
func (c *FileCache) Get(ctx context.Context, key string) (*ports.CachedItem, error) {
	if item, ok := c.memo.Get(key); ok {
		if time.Now().After(item.ExpiresAt) {
			return nil, domain.ErrCacheExpired
		}
		return item, nil
	}

	data, err := afero.ReadFile(c.fs, c.metaPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}

	var meta metaFile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	if time.Now().After(meta.ExpiresAt) {
		return nil, domain.ErrCacheExpired
	}

	item := &ports.CachedItem{
		Transcript: meta.Transcript,
		VideoPath:  meta.VideoPath,
		CreatedAt:  meta.CreatedAt,
		ExpiresAt:  meta.ExpiresAt,
	}
	c.memo.Add(key, item)
	return item, nil
}

// Set writes the entry for key, replacing any previous one
func (c *FileCache) Set(ctx context.Context, key string, item *ports.CachedItem) error {
	if err := c.fs.MkdirAll(c.entryDir(key), 0755); err != nil {
		return err
	}

	meta := metaFile{
		Transcript: item.Transcript,
		VideoPath:  item.VideoPath,
		CreatedAt:  item.CreatedAt,
		ExpiresAt:  item.ExpiresAt,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so an interrupted run never leaves half a file
	tmp := c.metaPath(key) + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0644); err != nil {
		return err
	}
	if err := c.fs.Rename(tmp, c.metaPath(key)); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}

	c.memo.Add(key, item)
	return nil
}

// Delete removes the entry for key
func (c *FileCache) Delete(ctx context.Context, key string) error {
	c.memo.Remove(key)
	return c.fs.RemoveAll(c.entryDir(key))
}

// CleanExpired removes stale and unreadable entries
func (c *FileCache) CleanExpired(ctx context.Context) (int, error) {
	entries, err := afero.ReadDir(c.fs, c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cleaned := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return cleaned, err
		}

		key := entry.Name()
		_, err := c.Get(ctx, key)
		if err == nil || errors.Is(err, domain.ErrCacheMiss) {
			continue
		}
		if err := c.Delete(ctx, key); err == nil {
			cleaned++
		}
	}

	return cleaned, nil
}

// Clear removes every entry
func (c *FileCache) Clear(ctx context.Context) error {
	c.memo.Purge()

	entries, err := afero.ReadDir(c.fs, c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			_ = c.fs.RemoveAll(filepath.Join(c.baseDir, entry.Name()))
		}
	}

	return nil
}

// Stats returns the number of entries and their size on disk
func (c *FileCache) Stats(ctx context.Context) (itemCount int, totalSize int64, err error) {
	entries, err := afero.ReadDir(c.fs, c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		itemCount++

		dirPath := filepath.Join(c.baseDir, entry.Name())
		_ = afero.Walk(c.fs, dirPath, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				totalSize += info.Size()
			}
			return nil
		})
	}

	return itemCount, totalSize, nil
}

var _ ports.CacheStore = (*FileCache)(nil)
