// Package locator finds mermaid blocks in document text. It is a pure
// text-scanning component: given a snapshot and a cursor position it
// produces line/character ranges and never mutates the text. Sentinel
// marker recognition is delegated to the active storage strategy so the
// scanning rules stay strategy-agnostic.
package locator

import (
	"fmt"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
)

const (
	fencePrefix        = "```"
	mermaidFencePrefix = "```mermaid"
	imageRefPrefix     = "![Mermaid Diagram]("

	// renderedSearchWindow bounds how far from the cursor, in lines, the
	// rendered-block search looks for a sentinel marker.
	renderedSearchWindow = 200
)

// Locator scans document snapshots for source and rendered mermaid blocks.
type Locator struct {
	strategy driven.StorageStrategy
}

// New creates a locator bound to the active storage strategy.
func New(strategy driven.StorageStrategy) *Locator {
	return &Locator{strategy: strategy}
}

// LocateSourceBlock finds the not-yet-rendered mermaid block containing the
// cursor. For mermaid documents the whole document is a single block.
// Returns nil when the cursor is not inside an unrendered mermaid fence.
func (l *Locator) LocateSourceBlock(text string, kind domain.DocumentKind, cursor domain.Position) *domain.SourceBlock {
	lines := splitLines(text)
	if kind == domain.KindMermaid {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return wholeDocumentBlock(lines)
	}

	cursorLine := clampLine(cursor.Line, lines)

	opener := -1
	for i := cursorLine; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, fencePrefix) {
			continue
		}
		if strings.HasPrefix(trimmed, mermaidFencePrefix) {
			opener = i
		}
		// Any other fence type aborts the search.
		break
	}
	if opener < 0 {
		return nil
	}

	closer := findClosingFence(lines, opener)
	if closer < 0 {
		return nil
	}

	// A block whose fence is preceded by a sentinel marker is already
	// rendered and is never offered as a source block.
	if l.precededByMarker(lines, opener) {
		return nil
	}

	return &domain.SourceBlock{
		Code:  strings.Join(lines[opener+1:closer], "\n"),
		Range: lineSpan(lines, opener, closer),
		Kind:  domain.KindMarkdown,
	}
}

// LocateRenderedBlock finds the rendered block nearest the cursor, searching
// a bounded window backward first and then forward, and recovers its
// original description through the active strategy. A marker that fails to
// decode is treated as no match; security failures propagate as errors.
func (l *Locator) LocateRenderedBlock(text string, kind domain.DocumentKind, docDir string, cursor domain.Position) (*domain.RenderedBlock, error) {
	lines := splitLines(text)
	cursorLine := clampLine(cursor.Line, lines)

	lo := cursorLine - renderedSearchWindow
	if lo < 0 {
		lo = 0
	}
	hi := cursorLine + renderedSearchWindow
	if hi > len(lines)-1 {
		hi = len(lines) - 1
	}

	for i := cursorLine; i >= lo; i-- {
		block, _, err := l.renderedBlockAt(lines, i, docDir, kind)
		if err != nil {
			return nil, err
		}
		if block != nil {
			return block, nil
		}
	}
	for i := cursorLine + 1; i <= hi; i++ {
		block, _, err := l.renderedBlockAt(lines, i, docDir, kind)
		if err != nil {
			return nil, err
		}
		if block != nil {
			return block, nil
		}
	}
	return nil, nil
}

// FindAllSourceBlocks returns every unrendered block in document order.
func (l *Locator) FindAllSourceBlocks(text string, kind domain.DocumentKind) []domain.SourceBlock {
	if kind == domain.KindMermaid {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []domain.SourceBlock{*wholeDocumentBlock(splitLines(text))}
	}

	lines := splitLines(text)
	var blocks []domain.SourceBlock
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, mermaidFencePrefix) {
			continue
		}
		closer := findClosingFence(lines, i)
		if closer < 0 {
			break
		}
		if !l.precededByMarker(lines, i) {
			blocks = append(blocks, domain.SourceBlock{
				Code:  strings.Join(lines[i+1:closer], "\n"),
				Range: lineSpan(lines, i, closer),
				Kind:  domain.KindMarkdown,
			})
		}
		i = closer
	}
	return blocks
}

// FindAllRenderedBlocks returns every decodable rendered block in document
// order. Decode misses are skipped silently; hard failures are collected
// per marker and do not abort the scan.
func (l *Locator) FindAllRenderedBlocks(text string, kind domain.DocumentKind, docDir string) ([]domain.RenderedBlock, []error) {
	lines := splitLines(text)
	var blocks []domain.RenderedBlock
	var errs []error
	for i := 0; i < len(lines); i++ {
		if !l.strategy.MatchesMarker(lines[i]) {
			continue
		}
		block, end, err := l.renderedBlockAt(lines, i, docDir, kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("marker at line %d: %w", i, err))
			continue
		}
		if block == nil {
			continue
		}
		blocks = append(blocks, *block)
		i = end
	}
	return blocks, errs
}

// CountSourceBlocks reports how many unrendered blocks the text holds.
// A single forward pass reusing the fence and marker recognition rules of
// the positional lookups.
func (l *Locator) CountSourceBlocks(text string, kind domain.DocumentKind) int {
	return len(l.FindAllSourceBlocks(text, kind))
}

// CountRenderedBlocks reports how many sentinel markers the text holds.
func (l *Locator) CountRenderedBlocks(text string) int {
	n := 0
	for _, line := range splitLines(text) {
		if l.strategy.MatchesMarker(line) {
			n++
		}
	}
	return n
}

// renderedBlockAt decodes the marker at line i, if any, and computes the
// block's full extent. The returned end index is the block's last line.
func (l *Locator) renderedBlockAt(lines []string, i int, docDir string, kind domain.DocumentKind) (*domain.RenderedBlock, int, error) {
	if !l.strategy.MatchesMarker(lines[i]) {
		return nil, i, nil
	}
	decoded, err := l.strategy.Decode(driven.DecodeContext{
		Lines:        lines,
		MarkerLine:   i,
		DocumentDir:  docDir,
		DocumentKind: kind,
	})
	if err != nil {
		return nil, i, err
	}
	if decoded == nil {
		return nil, i, nil
	}

	end := l.blockEnd(lines, i)
	return &domain.RenderedBlock{
		Code:  decoded.Code,
		Kind:  decoded.Kind,
		Range: lineSpan(lines, i, end),
	}, end, nil
}

// blockEnd returns the index of the last line belonging to the rendered
// block whose marker sits at line marker: either the strategy terminator
// line, or the artifact reference plus at most one trailing blank line.
func (l *Locator) blockEnd(lines []string, marker int) int {
	if term := l.strategy.Terminator(); term != "" {
		for i := marker + 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == term {
				return i
			}
		}
		// Unterminated wrapper: claim only the marker line.
		return marker
	}

	img := marker + 1
	for img < len(lines) && strings.TrimSpace(lines[img]) == "" {
		img++
	}
	if img >= len(lines) || !strings.Contains(lines[img], imageRefPrefix) {
		return marker
	}
	end := img
	if end+1 < len(lines) && strings.TrimSpace(lines[end+1]) == "" {
		end++
	}
	return end
}

// precededByMarker reports whether the first non-blank line above the fence
// opener carries the active strategy's sentinel, tolerating blank separator
// lines between marker and fence.
func (l *Locator) precededByMarker(lines []string, opener int) bool {
	for i := opener - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		return l.strategy.MatchesMarker(lines[i])
	}
	return false
}

// findClosingFence returns the first closing fence line after opener, or -1.
func findClosingFence(lines []string, opener int) int {
	for i := opener + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, fencePrefix) && !strings.HasPrefix(trimmed, mermaidFencePrefix) {
			return i
		}
	}
	return -1
}

// wholeDocumentBlock treats an entire standalone mermaid document as one
// source block, stripping a textual wrapper fence if one is present.
func wholeDocumentBlock(lines []string) *domain.SourceBlock {
	last := len(lines) - 1
	return &domain.SourceBlock{
		Code: stripWrapperFence(strings.Join(lines, "\n")),
		Range: domain.Range{
			Start: domain.Position{Line: 0, Character: 0},
			End:   domain.Position{Line: last, Character: domain.UTF16Len(lines[last])},
		},
		Kind: domain.KindMermaid,
	}
}

// stripWrapperFence removes a leading ```mermaid / trailing ``` pair that is
// textually present in a standalone mermaid document, so the block's code
// is already bare.
func stripWrapperFence(code string) string {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, mermaidFencePrefix) {
		return code
	}
	inner := strings.TrimPrefix(trimmed, mermaidFencePrefix)
	if !strings.HasSuffix(inner, fencePrefix) {
		return code
	}
	inner = strings.TrimSuffix(inner, fencePrefix)
	return strings.Trim(inner, "\n")
}

// lineSpan builds the replacement range for a block spanning lines
// start..end inclusive: through the start of the following line when one
// exists, otherwise to the end of the last line.
func lineSpan(lines []string, start, end int) domain.Range {
	r := domain.Range{Start: domain.Position{Line: start, Character: 0}}
	if end+1 < len(lines) {
		r.End = domain.Position{Line: end + 1, Character: 0}
	} else {
		r.End = domain.Position{Line: end, Character: domain.UTF16Len(lines[end])}
	}
	return r
}

// clampLine bounds a cursor line to the document.
func clampLine(line int, lines []string) int {
	if line < 0 {
		return 0
	}
	if line >= len(lines) {
		return len(lines) - 1
	}
	return line
}

// splitLines splits document text into lines, tolerating CRLF endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
