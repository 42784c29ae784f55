// Package disk is the file-based implementation of driven.ArtifactStore.
// Each document gets a hidden storage directory next to it holding the
// generated SVG artifacts and strategy side files, with cached renderer
// outputs in a nested cache directory.
package disk

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// Store manages per-document storage directories. It is stateless; all
// paths derive from the document directory passed to each call.
type Store struct{}

// New creates a disk artifact store.
func New() *Store {
	return &Store{}
}

// StorageDir returns the storage directory for a document directory.
func (s *Store) StorageDir(docDir string) string {
	return filepath.Join(docDir, domain.StorageDirName)
}

// cacheDir returns the render cache directory for a document directory.
func (s *Store) cacheDir(docDir string) string {
	return filepath.Join(s.StorageDir(docDir), domain.CacheDirName)
}

// WriteArtifact writes artifact bytes into the storage directory and
// returns the slash-separated path relative to the document directory, as
// used by image reference lines.
func (s *Store) WriteArtifact(docDir, name string, data []byte) (string, error) {
	dir := s.StorageDir(docDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	if err := writeWhole(filepath.Join(dir, name), data); err != nil {
		return "", err
	}
	return path.Join(domain.StorageDirName, name), nil
}

// WriteSideFile persists an encode side file under the document directory.
func (s *Store) WriteSideFile(docDir, relPath string, data []byte) error {
	full, err := s.resolve(docDir, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create side file directory: %w", err)
	}
	return writeWhole(full, data)
}

// ReadSideFile reads a side file referenced by a marker.
func (s *Store) ReadSideFile(docDir, relPath string) ([]byte, error) {
	full, err := s.resolve(docDir, relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// ReadCached returns the cached renderer output for a content hash, or nil.
func (s *Store) ReadCached(docDir string, hash uint64) []byte {
	data, err := os.ReadFile(s.cachePath(docDir, hash))
	if err != nil {
		return nil
	}
	return data
}

// WriteCached stores sanitised renderer output under a content hash.
func (s *Store) WriteCached(docDir string, hash uint64, data []byte) error {
	dir := s.cacheDir(docDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return writeWhole(s.cachePath(docDir, hash), data)
}

// Sweep removes .svg and .mmd files in the storage directory whose names
// begin with prefix and are not referenced. Files belonging to other
// documents in the same directory carry a different name prefix and are
// never candidates. The cache subdirectory is never touched. Best-effort:
// failures removing individual files are logged and skipped.
func (s *Store) Sweep(docDir, prefix string, referenced map[string]bool) error {
	dir := s.StorageDir(docDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read storage directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".svg", ".mmd":
		default:
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if referenced[name] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			logger.Warn("cleanup: could not remove %s: %v", name, err)
			continue
		}
		logger.Debug("cleanup: removed unreferenced %s", name)
	}
	return nil
}

// resolve joins a marker-supplied relative path with the document
// directory, rejecting anything that could escape it.
func (s *Store) resolve(docDir, relPath string) (string, error) {
	if filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") || strings.HasPrefix(relPath, "\\") {
		return "", fmt.Errorf("%w: %s", domain.ErrPathTraversal, relPath)
	}
	for _, seg := range strings.Split(filepath.ToSlash(relPath), "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %s", domain.ErrPathTraversal, relPath)
		}
	}
	return filepath.Join(docDir, filepath.FromSlash(relPath)), nil
}

// cachePath names a cache entry after its content hash.
func (s *Store) cachePath(docDir string, hash uint64) string {
	return filepath.Join(s.cacheDir(docDir), fmt.Sprintf("%016x.svg", hash))
}

// writeWhole writes data as a complete file: content lands in a temporary
// file first and is renamed into place, so a subsequent read never observes
// a partial write.
func writeWhole(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", target, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalise %s: %w", target, err)
	}
	return nil
}
