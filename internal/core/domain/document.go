package domain

import (
	"path/filepath"
	"strings"
	"unicode/utf16"
)

// DocumentKind distinguishes the two host document flavours.
type DocumentKind string

// Recognised document kinds.
const (
	// KindMarkdown is a markdown document containing fenced mermaid blocks.
	KindMarkdown DocumentKind = "markdown"

	// KindMermaid is a document whose entire content is a mermaid
	// description (a .mmd or .mermaid file).
	KindMermaid DocumentKind = "mermaid"
)

// IsValid returns true if the document kind is recognised.
func (k DocumentKind) IsValid() bool {
	return k == KindMarkdown || k == KindMermaid
}

// String returns the string representation.
func (k DocumentKind) String() string {
	return string(k)
}

// KindForPath returns the document kind implied by a file path.
func KindForPath(path string) DocumentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mmd", ".mermaid":
		return KindMermaid
	default:
		return KindMarkdown
	}
}

// Position is a 0-based line/character pair. Character offsets count UTF-16
// code units, matching the host editor's text-position convention.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open region between two positions.
type Range struct {
	Start Position
	End   Position
}

// TextEdit replaces the text inside Range with NewText.
type TextEdit struct {
	Range   Range
	NewText string
}

// EditSet maps a document URI to its ordered list of replacement edits.
// Produced fresh per operation and never retained.
type EditSet map[string][]TextEdit

// Document is an immutable text snapshot of a host document. Ownership of
// the live text lives in the host's dispatch layer; the core receives one
// snapshot per operation and must not mutate or retain it.
type Document struct {
	// URI identifies the document to the host (key of the EditSet).
	URI string

	// Path is the document's filesystem path. Relative artifact and
	// side-file paths resolve against its parent directory.
	Path string

	// Text is the full document text.
	Text string

	// Kind selects fenced-block or whole-document location rules.
	Kind DocumentKind
}

// SourceBlock is a not-yet-rendered mermaid description located in a
// document. Created by the locator and consumed immediately by render
// operations; never persisted.
type SourceBlock struct {
	// Code is the bare description text, without any fence wrapper.
	Code  string
	Range Range
	Kind  DocumentKind
}

// RenderedBlock is a region already converted to an artifact reference,
// with its original description recovered via the active storage strategy.
// Range spans from the sentinel marker through the end of the artifact
// reference and any trailing strategy markup, inclusive of exactly one
// logical unit.
type RenderedBlock struct {
	Code  string
	Range Range
	Kind  DocumentKind
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ByteOffset converts a UTF-16 character offset within a single line to a
// byte offset. Offsets past the end of the line clamp to its length.
func ByteOffset(line string, character int) int {
	if character <= 0 {
		return 0
	}
	units := 0
	for i, r := range line {
		if units >= character {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}
