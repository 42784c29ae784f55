package strategy

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/naming"
)

// Ensure Sidecar implements the interface.
var _ driven.StorageStrategy = (*Sidecar)(nil)

const sidecarMarkerPrefix = "<!-- mermaid-source-file:"

// Sidecar persists the description in a .mmd file inside the document's
// storage directory and keeps only its relative path in the sentinel:
// <!-- mermaid-source-file:.mermaid/NAME.mmd -->.
//
// A marker whose side file is missing is a silent decode miss; there is no
// "most recently modified file" recovery heuristic (see DESIGN.md).
type Sidecar struct {
	names *naming.Sequence
	store driven.ArtifactStore
}

// NewSidecar creates the side-file strategy. Filenames combine the document
// stem with the shared naming sequence, so they stay collision-resistant
// within and across process runs.
func NewSidecar(names *naming.Sequence, store driven.ArtifactStore) *Sidecar {
	return &Sidecar{names: names, store: store}
}

// Name returns the configuration name of the strategy.
func (s *Sidecar) Name() string { return NameSidecar }

// MatchesMarker reports whether a document line is a side-file sentinel.
func (s *Sidecar) MatchesMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, sidecarMarkerPrefix) && strings.HasSuffix(trimmed, "-->")
}

// Encode writes the description to a fresh side file and points the
// sentinel at it with a path relative to the document's parent directory.
func (s *Sidecar) Encode(ctx driven.EncodeContext, code string, _ domain.DocumentKind) (*driven.EncodedFragment, error) {
	name := fmt.Sprintf("%s_%s.mmd", documentStem(ctx.DocumentPath), s.names.NextID())
	relPath := path.Join(domain.StorageDirName, name)
	return &driven.EncodedFragment{
		MarkerLine: fmt.Sprintf("%s%s -->", sidecarMarkerPrefix, relPath),
		SideFiles:  []driven.SideFile{{RelPath: relPath, Data: []byte(code)}},
	}, nil
}

// Decode reads the side file named by the sentinel. A missing or unreadable
// file is a silent miss; a path escaping the document directory is a hard
// failure.
func (s *Sidecar) Decode(ctx driven.DecodeContext) (*driven.DecodedSource, error) {
	trimmed := strings.TrimSpace(ctx.Lines[ctx.MarkerLine])
	body, ok := strings.CutPrefix(trimmed, sidecarMarkerPrefix)
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutSuffix(body, "-->")
	if !ok {
		return nil, nil
	}
	relPath := strings.TrimSpace(body)
	if relPath == "" {
		return nil, nil
	}
	if unsafeRelPath(relPath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPathTraversal, relPath)
	}

	data, err := s.store.ReadSideFile(ctx.DocumentDir, relPath)
	if err != nil {
		if errors.Is(err, domain.ErrPathTraversal) {
			return nil, err
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, nil
	}

	kind := ctx.DocumentKind
	if !kind.IsValid() {
		kind = domain.KindMarkdown
	}
	return &driven.DecodedSource{Code: string(data), Kind: kind}, nil
}

// Terminator returns "" - the block ends after the artifact reference.
func (s *Sidecar) Terminator() string { return "" }

// unsafeRelPath reports whether a marker path could escape the document's
// directory: absolute paths and any ".." element are rejected outright.
func unsafeRelPath(p string) bool {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// documentStem returns the document filename without its extension, used as
// the prefix of generated side-file and artifact names.
func documentStem(docPath string) string {
	base := filepath.Base(docPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "diagram"
	}
	return stem
}
