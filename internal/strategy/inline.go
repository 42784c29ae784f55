package strategy

import (
	"fmt"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
)

// Ensure Inline implements the interface.
var _ driven.StorageStrategy = (*Inline)(nil)

const (
	inlineMarkerPrefix = "<!-- mermaid-source:"
	inlineMarkerSuffix = " -->"
)

// inlineEscaper makes a description safe to carry inside an HTML comment:
// without it a description containing "-->" would terminate the comment and
// leak the rest as active markup. Newlines are folded so the marker stays a
// single line.
var inlineEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\n", "&#10;",
	"\r", "&#13;",
)

// inlineUnescaper reverses inlineEscaper. The ampersand entity is listed
// last so escaped entities in the original text survive the round trip.
var inlineUnescaper = strings.NewReplacer(
	"&#13;", "\r",
	"&#10;", "\n",
	"&gt;", ">",
	"&lt;", "<",
	"&amp;", "&",
)

// Inline persists the description as escaped plain text inside an
// HTML-comment sentinel: <!-- mermaid-source:KIND:ESCAPED -->.
type Inline struct{}

// NewInline creates the inline-comment strategy.
func NewInline() *Inline {
	return &Inline{}
}

// Name returns the configuration name of the strategy.
func (s *Inline) Name() string { return NameInline }

// MatchesMarker reports whether a document line is an inline sentinel.
func (s *Inline) MatchesMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, inlineMarkerPrefix) && strings.HasSuffix(trimmed, "-->")
}

// Encode builds the sentinel line. No side files are written.
func (s *Inline) Encode(_ driven.EncodeContext, code string, kind domain.DocumentKind) (*driven.EncodedFragment, error) {
	marker := fmt.Sprintf("%s%s:%s%s", inlineMarkerPrefix, kind, inlineEscaper.Replace(code), inlineMarkerSuffix)
	return &driven.EncodedFragment{MarkerLine: marker}, nil
}

// Decode recovers the description from the sentinel line. Any structural
// mismatch is a silent miss.
func (s *Inline) Decode(ctx driven.DecodeContext) (*driven.DecodedSource, error) {
	trimmed := strings.TrimSpace(ctx.Lines[ctx.MarkerLine])
	body, ok := strings.CutPrefix(trimmed, inlineMarkerPrefix)
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutSuffix(body, inlineMarkerSuffix)
	if !ok {
		return nil, nil
	}
	kindToken, escaped, ok := strings.Cut(body, ":")
	if !ok {
		return nil, nil
	}
	kind, ok := parseKind(kindToken)
	if !ok {
		return nil, nil
	}
	return &driven.DecodedSource{Code: inlineUnescaper.Replace(escaped), Kind: kind}, nil
}

// Terminator returns "" - the block ends after the artifact reference.
func (s *Inline) Terminator() string { return "" }
