package driven

// ArtifactStore manages a document's hidden storage directory: generated
// SVG artifacts, strategy side files, and the nested render cache.
//
// Every write is a complete write of the whole contents; no partial-write
// state is observable by a subsequent read.
type ArtifactStore interface {
	// StorageDir returns the storage directory for a document directory.
	StorageDir(docDir string) string

	// WriteArtifact writes artifact bytes into the storage directory and
	// returns the artifact path relative to the document directory, in the
	// form used by image reference lines.
	WriteArtifact(docDir, name string, data []byte) (string, error)

	// WriteSideFile persists an encode side file. relPath is relative to
	// the document directory.
	WriteSideFile(docDir, relPath string, data []byte) error

	// ReadSideFile reads a side file referenced by a marker. Returns an
	// error wrapping domain.ErrPathTraversal when relPath escapes the
	// document directory; a missing file surfaces as an fs.ErrNotExist.
	ReadSideFile(docDir, relPath string) ([]byte, error)

	// ReadCached returns the cached sanitised renderer output for a content
	// hash, or nil when absent.
	ReadCached(docDir string, hash uint64) []byte

	// WriteCached stores sanitised renderer output under a content hash.
	WriteCached(docDir string, hash uint64, data []byte) error

	// Sweep removes artifact and side files in the storage directory whose
	// names begin with prefix and are not in referenced. The prefix scopes
	// the sweep to one document's files: sibling documents share the
	// storage directory, and their artifacts must never be candidates.
	// The cache subdirectory is never touched. Best-effort: a failure
	// removing one file does not abort the sweep.
	Sweep(docDir, prefix string, referenced map[string]bool) error
}
