package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"folio.dev/internal/config"
	"folio.dev/internal/models"
)

// ContentService owns the site catalog. Readers always see one complete,
// validated catalog; a reload swaps it atomically or not at all.
type ContentService struct {
	path     string
	log      *zap.Logger
	current  atomic.Pointer[models.Catalog]
	reloadMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []func(*models.Catalog)
}

// NewContentService loads and validates the catalog at path
func NewContentService(path string, logger *zap.Logger) (*ContentService, error) {
	s := newContentService(path, logger)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticContentService serves a catalog that was built in memory. It
// cannot be reloaded from disk.
func NewStaticContentService(c *models.Catalog, logger *zap.Logger) (*ContentService, error) {
	s := newContentService("", logger)
	if err := s.install(c); err != nil {
		return nil, err
	}
	return s, nil
}

func newContentService(path string, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{path: path, log: logger.With(zap.String("component", "content"))}
}

// Catalog returns the current catalog. Callers must not modify it.
func (s *ContentService) Catalog() *models.Catalog {
	return s.current.Load()
}

// OnReload registers fn to run after every successful reload.
func (s *ContentService) OnReload(fn func(*models.Catalog)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the content file. On any error the previous catalog stays
// in place.
func (s *ContentService) Reload() error {
	if s.path == "" {
		return fmt.Errorf("reload: catalog was not loaded from a file")
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	c, err := config.LoadCatalog(s.path)
	if err != nil {
		return err
	}
	if err := s.install(c); err != nil {
		return err
	}

	s.listenersMu.Lock()
	listeners := append([]func(*models.Catalog){}, s.listeners...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(c)
	}
	return nil
}

func (s *ContentService) install(c *models.Catalog) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	for _, ref := range c.ClearDanglingReferences() {
		s.log.Warn("testimonial references unknown project",
			zap.String("testimonial", ref.TestimonialID),
			zap.String("project", ref.ProjectID))
	}
	s.current.Store(c)
	s.log.Info("catalog loaded",
		zap.Int("projects", len(c.Projects)),
		zap.Int("skills", len(c.Skills)),
		zap.Int("testimonials", len(c.Testimonials)))
	return nil
}

// Watch reloads the catalog whenever the content file changes, until ctx
// is done. Bursts of events are coalesced by debounce.
func (s *ContentService) Watch(ctx context.Context, debounce time.Duration) error {
	if s.path == "" {
		return fmt.Errorf("watch: catalog was not loaded from a file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.log.Info("watching content", zap.String("path", s.path))

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	target := filepath.Clean(s.path)
	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("content watcher error", zap.Error(err))

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < debounce {
				continue
			}
			pending = time.Time{}
			if err := s.Reload(); err != nil {
				s.log.Error("content reload failed, keeping previous catalog", zap.Error(err))
			}
		}
	}
}
