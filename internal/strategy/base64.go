package strategy

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
)

// Ensure Base64 implements the interface.
var _ driven.StorageStrategy = (*Base64)(nil)

const (
	base64MarkerPrefix = "<!-- mermaid-data:"
	base64MarkerSuffix = " -->"
)

// Base64 persists the description base64-encoded inside an HTML-comment
// sentinel: <!-- mermaid-data:KIND:BASE64 -->. The base64 alphabet contains
// no markup metacharacters, so the payload can never terminate the comment.
type Base64 struct{}

// NewBase64 creates the encoded-comment strategy.
func NewBase64() *Base64 {
	return &Base64{}
}

// Name returns the configuration name of the strategy.
func (s *Base64) Name() string { return NameBase64 }

// MatchesMarker reports whether a document line is an encoded sentinel.
func (s *Base64) MatchesMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, base64MarkerPrefix) && strings.HasSuffix(trimmed, "-->")
}

// Encode builds the sentinel line. No side files are written.
func (s *Base64) Encode(_ driven.EncodeContext, code string, kind domain.DocumentKind) (*driven.EncodedFragment, error) {
	payload := base64.StdEncoding.EncodeToString([]byte(code))
	marker := fmt.Sprintf("%s%s:%s%s", base64MarkerPrefix, kind, payload, base64MarkerSuffix)
	return &driven.EncodedFragment{MarkerLine: marker}, nil
}

// Decode recovers the description from the sentinel line. Malformed base64
// or an unknown kind token is a silent miss.
func (s *Base64) Decode(ctx driven.DecodeContext) (*driven.DecodedSource, error) {
	trimmed := strings.TrimSpace(ctx.Lines[ctx.MarkerLine])
	body, ok := strings.CutPrefix(trimmed, base64MarkerPrefix)
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutSuffix(body, base64MarkerSuffix)
	if !ok {
		return nil, nil
	}
	kindToken, payload, ok := strings.Cut(body, ":")
	if !ok {
		return nil, nil
	}
	kind, ok := parseKind(kindToken)
	if !ok {
		return nil, nil
	}
	code, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, nil
	}
	return &driven.DecodedSource{Code: string(code), Kind: kind}, nil
}

// Terminator returns "" - the block ends after the artifact reference.
func (s *Base64) Terminator() string { return "" }
