package sitecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const fileSuffix = ".xml.cache"

// FileStore keeps one file per key under a directory. The file modification
// time is the write timestamp.
type FileStore struct {
	dir string
	now func() time.Time
	log *logrus.Entry
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string, log *logrus.Entry) (*FileStore, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{
		dir: dir,
		now: time.Now,
		log: log.WithField("component", "sitemap-cache-file"),
	}, nil
}

// WithClock replaces the time source.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now
	return s
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) path(key Key) string {
	return filepath.Join(s.dir, "sitemap."+key.storageName()+fileSuffix)
}

func (s *FileStore) Get(_ context.Context, key Key, ttl time.Duration) ([]byte, bool) {
	p := s.path(key)
	info, err := os.Stat(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WithError(err).WithField("key", key.String()).Warn("Failed to stat cache entry")
		}
		return nil, false
	}
	if !s.fresh(info.ModTime(), ttl) {
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		s.log.WithError(err).WithField("key", key.String()).Warn("Failed to read cache entry")
		return nil, false
	}
	return data, true
}

func (s *FileStore) fresh(written time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return s.now().Sub(written) < ttl
}

func (s *FileStore) Put(_ context.Context, key Key, data []byte, _ time.Duration) error {
	p := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	now := s.now()
	if err := os.Chtimes(tmpName, now, now); err != nil {
		return fmt.Errorf("stamp cache file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("publish cache file: %w", err)
	}
	return nil
}

type fileEntry struct {
	typeToken string
	langToken string
	path      string
}

// entries lists the cache files in the directory.
func (s *FileStore) entries() ([]fileEntry, error) {
	des, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make([]fileEntry, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "sitemap.") || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		parts := strings.SplitN(strings.TrimSuffix(strings.TrimPrefix(name, "sitemap."), fileSuffix), ".", 2)
		if len(parts) != 2 {
			continue
		}
		out = append(out, fileEntry{typeToken: parts[0], langToken: parts[1], path: filepath.Join(s.dir, name)})
	}
	return out, nil
}

func (e fileEntry) matches(t ArtifactType, language string) bool {
	if t != ArtifactAll && e.typeToken != escapeToken(string(t)) {
		return false
	}
	if language == AllLanguages {
		return true
	}
	return e.langToken == Key{Language: language}.langToken()
}

func (s *FileStore) Invalidate(_ context.Context, t ArtifactType, language string) error {
	if t == ArtifactAll && language == AllLanguages {
		return s.clear()
	}
	if t != ArtifactAll && language != AllLanguages {
		err := os.Remove(s.path(Key{Type: t, Language: language}))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove cache entry: %w", err)
		}
		return nil
	}

	entries, err := s.entries()
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if !e.matches(t, language) {
			continue
		}
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) clear() error {
	entries, err := s.entries()
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) SweepExpired(_ context.Context, ttl time.Duration) (int, error) {
	entries, err := s.entries()
	if err != nil {
		return 0, fmt.Errorf("list cache dir: %w", err)
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		info, err := os.Stat(e.path)
		if err != nil {
			continue
		}
		if s.fresh(info.ModTime(), ttl) {
			continue
		}
		if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

var _ Store = (*FileStore)(nil)
