package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driving"
	"github.com/dawsh2/mermaid-preview/internal/locator"
	"github.com/dawsh2/mermaid-preview/internal/logger"
	"github.com/dawsh2/mermaid-preview/internal/naming"
	"github.com/dawsh2/mermaid-preview/internal/sanitizer"
)

// Ensure PreviewService implements the interface.
var _ driving.PreviewService = (*PreviewService)(nil)

const imageRefFormat = "![Mermaid Diagram](%s)"

// artifactRef matches relative references into a document's storage
// directory, on image-reference and sentinel lines alike. Bounded negated
// character class; linear on any input.
var artifactRef = regexp.MustCompile(`\.mermaid/([^\s)'"<>]+)`)

// PreviewService renders mermaid blocks to artifacts and synthesises the
// text edits that swap descriptions and artifact references. The render
// cache is keyed purely by content hash, never by document identity, so
// overlapping requests from independent documents share entries safely.
type PreviewService struct {
	renderer driven.Renderer
	strategy driven.StorageStrategy
	store    driven.ArtifactStore
	names    *naming.Sequence
	locator  *locator.Locator

	mu    sync.Mutex
	cache map[uint64][]byte
}

// NewPreviewService creates a preview service bound to the active storage
// strategy.
func NewPreviewService(
	renderer driven.Renderer,
	strategy driven.StorageStrategy,
	store driven.ArtifactStore,
	names *naming.Sequence,
) *PreviewService {
	return &PreviewService{
		renderer: renderer,
		strategy: strategy,
		store:    store,
		names:    names,
		locator:  locator.New(strategy),
		cache:    make(map[uint64][]byte),
	}
}

// RenderEdit renders the source block at the cursor and returns the
// replacement edit, or (nil, nil) when the cursor is not on a source block.
func (s *PreviewService) RenderEdit(ctx context.Context, doc domain.Document, cursor domain.Position) (domain.EditSet, error) {
	block := s.locator.LocateSourceBlock(doc.Text, doc.Kind, cursor)
	if block == nil {
		return nil, nil
	}
	edit, err := s.synthesizeRenderEdit(ctx, doc, *block)
	if err != nil {
		return nil, err
	}
	return domain.EditSet{doc.URI: []domain.TextEdit{edit}}, nil
}

// RestoreEdit replaces the rendered block at the cursor with its original
// fenced description, or returns (nil, nil) when no rendered block is there.
func (s *PreviewService) RestoreEdit(_ context.Context, doc domain.Document, cursor domain.Position) (domain.EditSet, error) {
	block, err := s.locator.LocateRenderedBlock(doc.Text, doc.Kind, filepath.Dir(doc.Path), cursor)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, nil
	}
	return domain.EditSet{doc.URI: []domain.TextEdit{synthesizeRestoreEdit(*block)}}, nil
}

// RenderAll renders every unrendered block in the document. Failures are
// collected per block and never abort the remaining blocks; blocks already
// rendered are skipped by the locator.
func (s *PreviewService) RenderAll(ctx context.Context, doc domain.Document) (domain.EditSet, []error) {
	blocks := s.locator.FindAllSourceBlocks(doc.Text, doc.Kind)
	var edits []domain.TextEdit
	var errs []error
	for _, block := range blocks {
		edit, err := s.synthesizeRenderEdit(ctx, doc, block)
		if err != nil {
			errs = append(errs, fmt.Errorf("block at line %d: %w", block.Range.Start.Line, err))
			continue
		}
		edits = append(edits, edit)
	}
	if len(edits) == 0 {
		return nil, errs
	}
	return domain.EditSet{doc.URI: edits}, errs
}

// RestoreAll restores every rendered block in the document, with the same
// per-block failure policy as RenderAll.
func (s *PreviewService) RestoreAll(_ context.Context, doc domain.Document) (domain.EditSet, []error) {
	blocks, errs := s.locator.FindAllRenderedBlocks(doc.Text, doc.Kind, filepath.Dir(doc.Path))
	var edits []domain.TextEdit
	for _, block := range blocks {
		edits = append(edits, synthesizeRestoreEdit(block))
	}
	if len(edits) == 0 {
		return nil, errs
	}
	return domain.EditSet{doc.URI: edits}, errs
}

// CountSourceBlocks reports how many unrendered blocks the document holds.
func (s *PreviewService) CountSourceBlocks(doc domain.Document) int {
	return s.locator.CountSourceBlocks(doc.Text, doc.Kind)
}

// CountRenderedBlocks reports how many rendered blocks the document holds.
func (s *PreviewService) CountRenderedBlocks(doc domain.Document) int {
	return s.locator.CountRenderedBlocks(doc.Text)
}

// Cleanup removes artifacts in the document's storage directory that its
// text no longer references. The caller must pass post-edit text: deciding
// against stale content would delete artifacts the edit is about to
// reference. The sweep is scoped to this document's name prefix, so sibling
// documents sharing the directory keep their artifacts and side files. The
// cache subdirectory is never touched.
func (s *PreviewService) Cleanup(doc domain.Document) error {
	referenced := make(map[string]bool)
	for _, m := range artifactRef.FindAllStringSubmatch(doc.Text, -1) {
		referenced[filepath.Base(m[1])] = true
	}
	return s.store.Sweep(filepath.Dir(doc.Path), documentStem(doc.Path)+"_", referenced)
}

// renderDescription returns sanitised SVG for a description, consulting the
// in-memory cache and the on-disk cache before invoking the renderer.
// Rejected output is never cached and produces no artifact.
func (s *PreviewService) renderDescription(ctx context.Context, docDir, code string) ([]byte, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.ErrEmptyDiagram
	}
	hash := contentHash(code)

	s.mu.Lock()
	cached, ok := s.cache[hash]
	s.mu.Unlock()
	if ok {
		logger.Debug("render cache hit (memory) for %016x", hash)
		return cached, nil
	}
	if data := s.store.ReadCached(docDir, hash); data != nil {
		logger.Debug("render cache hit (disk) for %016x", hash)
		s.mu.Lock()
		s.cache[hash] = data
		s.mu.Unlock()
		return data, nil
	}

	raw, err := s.renderer.Render(ctx, code)
	if err != nil {
		return nil, err
	}
	clean, err := sanitizer.Sanitize(string(raw))
	if err != nil {
		return nil, err
	}

	data := []byte(clean)
	s.mu.Lock()
	s.cache[hash] = data
	s.mu.Unlock()
	if err := s.store.WriteCached(docDir, hash, data); err != nil {
		logger.Warn("could not persist cache entry %016x: %v", hash, err)
	}
	return data, nil
}

// synthesizeRenderEdit renders one block, writes its artifact and side
// files, and builds the replacement text: sentinel marker, blank line,
// artifact reference, and the strategy terminator when one exists.
func (s *PreviewService) synthesizeRenderEdit(ctx context.Context, doc domain.Document, block domain.SourceBlock) (domain.TextEdit, error) {
	docDir := filepath.Dir(doc.Path)

	svg, err := s.renderDescription(ctx, docDir, block.Code)
	if err != nil {
		return domain.TextEdit{}, err
	}

	artifactName := fmt.Sprintf("%s_diagram_%s.svg", documentStem(doc.Path), s.names.NextID())
	relPath, err := s.store.WriteArtifact(docDir, artifactName, svg)
	if err != nil {
		return domain.TextEdit{}, err
	}

	frag, err := s.strategy.Encode(driven.EncodeContext{DocumentPath: doc.Path}, block.Code, block.Kind)
	if err != nil {
		return domain.TextEdit{}, err
	}
	for _, sf := range frag.SideFiles {
		if err := s.store.WriteSideFile(docDir, sf.RelPath, sf.Data); err != nil {
			return domain.TextEdit{}, err
		}
	}

	var b strings.Builder
	b.WriteString(frag.MarkerLine)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(imageRefFormat, relPath))
	b.WriteString("\n")
	if term := s.strategy.Terminator(); term != "" {
		b.WriteString(term)
		b.WriteString("\n")
	}

	return domain.TextEdit{Range: block.Range, NewText: b.String()}, nil
}

// synthesizeRestoreEdit wraps a block's recovered description back into the
// fenced form appropriate to its document kind.
func synthesizeRestoreEdit(block domain.RenderedBlock) domain.TextEdit {
	code := strings.TrimRight(block.Code, " \t\r\n")
	var newText string
	if block.Kind == domain.KindMermaid {
		newText = code + "\n"
	} else {
		newText = fmt.Sprintf("```mermaid\n%s\n```\n", code)
	}
	return domain.TextEdit{Range: block.Range, NewText: newText}
}

// contentHash is the render-cache key: a stable 64-bit FNV-1a hash of the
// exact description text, whitespace included.
func contentHash(code string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(code))
	return h.Sum64()
}

// documentStem returns the document filename without its extension, used as
// the prefix of generated artifact names.
func documentStem(docPath string) string {
	base := filepath.Base(docPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "diagram"
	}
	return stem
}
