package strategy

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
)

// Ensure Embedded implements the interface.
var _ driven.StorageStrategy = (*Embedded)(nil)

const (
	embeddedMarkerPrefix = "<details data-mermaid='"
	embeddedMarkerSuffix = "'>"
	embeddedTerminator   = "</details>"

	// embeddedPayloadVersion is bumped when the payload structure changes.
	// A version mismatch is a decode miss, never an error.
	embeddedPayloadVersion = 1
)

// embeddedEscaper replaces every markup metacharacter in the JSON payload
// with its \u escape so a description containing "</details>" or a quote
// can never break out of the wrapper attribute.
var embeddedEscaper = strings.NewReplacer(
	"<", `\u003c`,
	">", `\u003e`,
	"&", `\u0026`,
	"'", `\u0027`,
)

// Embedded persists the description as a versioned JSON payload on a
// <details> wrapper that also encloses the artifact reference:
//
//	<details data-mermaid='{"version":1,"kind":"markdown","code":"..."}'>
//	![Mermaid Diagram](.mermaid/NAME.svg)
//	</details>
type Embedded struct{}

// NewEmbedded creates the embedded-payload strategy.
func NewEmbedded() *Embedded {
	return &Embedded{}
}

// Name returns the configuration name of the strategy.
func (s *Embedded) Name() string { return NameEmbedded }

// MatchesMarker reports whether a document line opens a payload wrapper.
func (s *Embedded) MatchesMarker(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), embeddedMarkerPrefix)
}

// Encode builds the wrapper opening line. No side files are written.
func (s *Embedded) Encode(_ driven.EncodeContext, code string, kind domain.DocumentKind) (*driven.EncodedFragment, error) {
	payload := "{}"
	var err error
	if payload, err = sjson.Set(payload, "version", embeddedPayloadVersion); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	if payload, err = sjson.Set(payload, "kind", string(kind)); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	if payload, err = sjson.Set(payload, "code", code); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	marker := embeddedMarkerPrefix + embeddedEscaper.Replace(payload) + embeddedMarkerSuffix
	return &driven.EncodedFragment{MarkerLine: marker}, nil
}

// Decode recovers the description from the wrapper payload. Invalid JSON,
// a version mismatch, or an unknown kind token is a silent miss.
func (s *Embedded) Decode(ctx driven.DecodeContext) (*driven.DecodedSource, error) {
	trimmed := strings.TrimSpace(ctx.Lines[ctx.MarkerLine])
	payload, ok := strings.CutPrefix(trimmed, embeddedMarkerPrefix)
	if !ok {
		return nil, nil
	}
	payload, ok = strings.CutSuffix(payload, embeddedMarkerSuffix)
	if !ok {
		return nil, nil
	}
	if !gjson.Valid(payload) {
		return nil, nil
	}
	if gjson.Get(payload, "version").Int() != embeddedPayloadVersion {
		return nil, nil
	}
	kind, ok := parseKind(gjson.Get(payload, "kind").String())
	if !ok {
		return nil, nil
	}
	code := gjson.Get(payload, "code")
	if !code.Exists() {
		return nil, nil
	}
	return &driven.DecodedSource{Code: code.String(), Kind: kind}, nil
}

// Terminator returns the wrapper closing line.
func (s *Embedded) Terminator() string { return embeddedTerminator }
