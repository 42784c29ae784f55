package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/logger"
)

// loadDocument reads a document snapshot from disk.
func loadDocument(path string) (domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
		}
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	return domain.Document{
		URI:  "file://" + filepath.ToSlash(abs),
		Path: abs,
		Text: string(raw),
		Kind: domain.KindForPath(abs),
	}, nil
}

// commitEdits applies the document's edits to disk and sweeps artifacts no
// longer referenced by the post-edit text. Returns the number of edits
// applied.
func commitEdits(doc domain.Document, edits domain.EditSet) (int, error) {
	docEdits := edits[doc.URI]
	if len(docEdits) == 0 {
		return 0, nil
	}

	newText, err := applyEdits(doc.Text, docEdits)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(doc.Path, []byte(newText), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", doc.Path, err)
	}

	// The sweep must judge references against the post-edit text.
	updated := doc
	updated.Text = newText
	if err := previewService.Cleanup(updated); err != nil {
		logger.Warn("artifact cleanup failed: %v", err)
	}

	return len(docEdits), nil
}

// applyEdits replays an edit list onto document text. Edits are applied in
// reverse document order so earlier offsets stay valid while later ranges
// are replaced.
func applyEdits(text string, edits []domain.TextEdit) (string, error) {
	sorted := make([]domain.TextEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Range.Start, sorted[j].Range.Start
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Character > b.Character
	})

	for _, edit := range sorted {
		start, err := byteOffset(text, edit.Range.Start)
		if err != nil {
			return "", err
		}
		end, err := byteOffset(text, edit.Range.End)
		if err != nil {
			return "", err
		}
		if end < start {
			return "", fmt.Errorf("%w: end precedes start", domain.ErrInvalidRange)
		}
		text = text[:start] + edit.NewText + text[end:]
	}

	return text, nil
}

// byteOffset converts a line/character position (characters counted in
// UTF-16 code units) into a byte offset within text.
func byteOffset(text string, pos domain.Position) (int, error) {
	if pos.Line < 0 || pos.Character < 0 {
		return 0, fmt.Errorf("%w: negative position", domain.ErrInvalidRange)
	}

	offset := 0
	rest := text
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return 0, fmt.Errorf("%w: line %d beyond end of document", domain.ErrInvalidRange, pos.Line)
		}
		offset += nl + 1
		rest = rest[nl+1:]
	}

	lineText := rest
	if nl := strings.IndexByte(lineText, '\n'); nl >= 0 {
		lineText = lineText[:nl]
	}

	return offset + domain.ByteOffset(lineText, pos.Character), nil
}
