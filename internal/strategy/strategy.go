// Package strategy implements the interchangeable storage codecs that
// persist a mermaid description alongside its rendered form. Exactly one
// strategy is active per process, selected by configuration; all of them
// satisfy the driven.StorageStrategy contract so the locator and the edit
// synthesiser never special-case a format.
package strategy

import (
	"fmt"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/naming"
)

// Configuration names of the available strategies.
const (
	// NameInline stores the escaped description in an HTML comment.
	NameInline = "inline"

	// NameBase64 stores the base64-encoded description in an HTML comment.
	NameBase64 = "base64"

	// NameSidecar stores the description in a relative side file and keeps
	// only its path in the comment. The original deployment's format.
	NameSidecar = "sidecar"

	// NameEmbedded stores a versioned JSON payload in a <details> wrapper
	// that also encloses the artifact reference.
	NameEmbedded = "embedded"
)

// DefaultName selects the sidecar strategy, matching the format existing
// documents already carry.
const DefaultName = NameSidecar

// New returns the storage strategy with the given configuration name.
// An empty name selects the default.
func New(name string, names *naming.Sequence, store driven.ArtifactStore) (driven.StorageStrategy, error) {
	switch name {
	case "", NameSidecar:
		return NewSidecar(names, store), nil
	case NameInline:
		return NewInline(), nil
	case NameBase64:
		return NewBase64(), nil
	case NameEmbedded:
		return NewEmbedded(), nil
	default:
		return nil, fmt.Errorf("unknown storage strategy %q", name)
	}
}

// parseKind validates a kind token recovered from a marker. Unknown tokens
// make the whole marker a decode miss, never an error.
func parseKind(s string) (domain.DocumentKind, bool) {
	k := domain.DocumentKind(s)
	return k, k.IsValid()
}
