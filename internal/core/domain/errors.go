package domain

import "errors"

// Domain errors represent failures of the preview pipeline.
// Infrastructure errors are wrapped around these sentinels with %w so
// callers can branch with errors.Is while keeping the diagnostic text.
var (
	// ErrDocumentNotFound indicates the host asked about an unknown document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidRange indicates a position outside the document text.
	ErrInvalidRange = errors.New("invalid range")

	// ErrRendererUnavailable indicates the mermaid executable is missing.
	ErrRendererUnavailable = errors.New("mermaid renderer unavailable")

	// ErrRenderFailed indicates the renderer process exited non-zero or
	// produced no output. Wraps carry the process diagnostic text.
	ErrRenderFailed = errors.New("mermaid render failed")

	// ErrSVGRejected indicates the renderer output contained content that
	// must never reach the host document. The operation aborts; no partial
	// output is produced or cached.
	ErrSVGRejected = errors.New("svg rejected")

	// ErrPathTraversal indicates a marker referenced a path outside the
	// document's storage directory. Always an abort, never a silent miss.
	ErrPathTraversal = errors.New("path traversal")

	// ErrEmptyDiagram indicates a render was requested for blank
	// description text.
	ErrEmptyDiagram = errors.New("mermaid description is empty")
)
