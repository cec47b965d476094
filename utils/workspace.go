package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"clipforge/models"
)

// Workspace owns every temporary file one request creates. Paths carry the
// request timestamp plus a per-request random token, so two requests started
// within the same second cannot collide. Cleanup deletes each registered
// path exactly once and never propagates deletion failures.
type Workspace struct {
	dir       string
	timestamp int64
	token     string
	maxSizeMB int64
	paths     []string

	// remove is swappable in tests
	remove func(string) error
}

// NewWorkspace creates a workspace rooted at dir with the given file size
// ceiling in megabytes.
func NewWorkspace(dir string, maxSizeMB int64) *Workspace {
	return &Workspace{
		dir:       dir,
		timestamp: time.Now().Unix(),
		token:     strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
		maxSizeMB: maxSizeMB,
		remove:    os.RemoveAll,
	}
}

// Path builds a workspace file path for the given artifact kind and
// extension and registers it for cleanup.
func (w *Workspace) Path(kind, ext string) string {
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%d_%s.%s", kind, w.timestamp, w.token, ext))
	w.Register(path)
	return path
}

// Dir builds a workspace subdirectory path (used for frame extraction) and
// registers it for cleanup.
func (w *Workspace) Dir(kind string) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%s_%d_%s", kind, w.timestamp, w.token))
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	w.Register(path)
	return path, nil
}

// Register adopts a path so Cleanup will delete it. Registering the same
// path twice is harmless; it is still deleted once.
func (w *Workspace) Register(path string) {
	for _, p := range w.paths {
		if p == path {
			return
		}
	}
	w.paths = append(w.paths, path)
}

// Save writes data to a new workspace file and applies the size guard
// before anything expensive runs. The file stays registered even when the
// guard rejects it, so Cleanup removes it.
func (w *Workspace) Save(kind, ext string, data []byte) (string, error) {
	path := w.Path(kind, ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save temporary file %s: %w", path, err)
	}
	if err := w.CheckSize(path); err != nil {
		return "", err
	}
	return path, nil
}

// CheckSize rejects files strictly larger than the configured ceiling.
func (w *Workspace) CheckSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > w.maxSizeMB*1024*1024 {
		return &models.FileTooLargeError{
			SizeMB: float64(info.Size()) / (1024 * 1024),
			MaxMB:  w.maxSizeMB,
		}
	}
	return nil
}

// Cleanup deletes every registered path. Meant to run via defer on all exit
// paths; failures are logged and swallowed so one stubborn file never stops
// the rest.
func (w *Workspace) Cleanup() {
	for _, path := range w.paths {
		if err := w.remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			log.Error().Err(err).Str("path", path).Msg("Error cleaning up temp file")
			continue
		}
		log.Info().Str("path", path).Msg("Cleaned up")
	}
	w.paths = nil
}
