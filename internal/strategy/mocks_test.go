package strategy

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
)

// memStore is an in-memory ArtifactStore keyed by docDir and relative path.
type memStore struct {
	files map[string][]byte
}

var _ driven.ArtifactStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) key(docDir, relPath string) string {
	return docDir + "|" + relPath
}

func (m *memStore) StorageDir(docDir string) string {
	return path.Join(docDir, domain.StorageDirName)
}

func (m *memStore) WriteArtifact(docDir, name string, data []byte) (string, error) {
	relPath := path.Join(domain.StorageDirName, name)
	m.files[m.key(docDir, relPath)] = data
	return relPath, nil
}

func (m *memStore) WriteSideFile(docDir, relPath string, data []byte) error {
	m.files[m.key(docDir, relPath)] = data
	return nil
}

func (m *memStore) ReadSideFile(docDir, relPath string) ([]byte, error) {
	data, ok := m.files[m.key(docDir, relPath)]
	if !ok {
		return nil, fmt.Errorf("side file %s: %w", relPath, fs.ErrNotExist)
	}
	return data, nil
}

func (m *memStore) ReadCached(docDir string, hash uint64) []byte {
	return m.files[m.key(docDir, fmt.Sprintf("cache/%016x", hash))]
}

func (m *memStore) WriteCached(docDir string, hash uint64, data []byte) error {
	m.files[m.key(docDir, fmt.Sprintf("cache/%016x", hash))] = data
	return nil
}

func (m *memStore) Sweep(string, string, map[string]bool) error {
	return nil
}
