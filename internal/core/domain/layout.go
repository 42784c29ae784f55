package domain

// On-disk layout shared by the artifact store, the storage strategies, and
// artifact cleanup.
const (
	// StorageDirName is the hidden per-document directory holding generated
	// artifacts and strategy side files.
	StorageDirName = ".mermaid"

	// CacheDirName is the directory nested inside StorageDirName holding
	// hash-named cached renderer outputs. Cleanup never touches it.
	CacheDirName = ".cache"
)
