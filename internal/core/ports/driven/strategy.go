package driven

import (
	"github.com/dawsh2/mermaid-preview/internal/core/domain"
)

// SideFile is a file an encode wants written next to the document, with a
// path relative to the document's parent directory.
type SideFile struct {
	RelPath string
	Data    []byte
}

// EncodedFragment is the document-side output of an encode.
type EncodedFragment struct {
	// MarkerLine is the sentinel line embedded into the document. It lets
	// the locator recognise the rendered block and recover its description.
	MarkerLine string

	// SideFiles are additional writes the caller must persist before the
	// fragment becomes part of the document.
	SideFiles []SideFile
}

// EncodeContext carries the document-side inputs of an encode.
type EncodeContext struct {
	// DocumentPath is the host document's filesystem path. Side-file names
	// derive from its stem; relative paths resolve against its parent
	// directory, never the process working directory.
	DocumentPath string
}

// DecodeContext gives a strategy the surroundings of a candidate marker.
type DecodeContext struct {
	// Lines is the full document text split into lines.
	Lines []string

	// MarkerLine indexes the candidate sentinel line within Lines.
	MarkerLine int

	// DocumentDir is the document's parent directory, used to resolve
	// side-file references.
	DocumentDir string

	// DocumentKind is the kind of the host document, used by strategies
	// whose markers do not record a kind of their own.
	DocumentKind domain.DocumentKind
}

// DecodedSource is the result of a successful decode.
type DecodedSource struct {
	Code string
	Kind domain.DocumentKind
}

// StorageStrategy is one interchangeable scheme for persisting a mermaid
// description alongside its rendered form. Exactly one strategy is active
// per process; all strategies share this contract so they can be swapped
// without touching the locator or the edit synthesiser.
//
// Round-trip invariant: for every description S,
// Decode(Encode(S)) == S modulo trailing-newline normalisation.
type StorageStrategy interface {
	// Name returns the configuration name of the strategy.
	Name() string

	// MatchesMarker reports whether a document line is this strategy's
	// sentinel marker. Must tolerate leading and trailing whitespace.
	MatchesMarker(line string) bool

	// Encode turns a description into a marker line plus optional side-file
	// writes. The marker must never let the description be interpreted as
	// active markup by the host document renderer.
	Encode(ctx EncodeContext, code string, kind domain.DocumentKind) (*EncodedFragment, error)

	// Decode recovers the original description from a candidate marker.
	// A structure or version mismatch returns (nil, nil): a non-matching
	// marker is common (cursor near an unrelated comment) and must not
	// abort the caller. Security failures such as path traversal return an
	// error and always abort the operation.
	Decode(ctx DecodeContext) (*DecodedSource, error)

	// Terminator returns the line that closes a rendered block, or "" when
	// the block ends at the first blank line after the artifact reference.
	Terminator() string
}
