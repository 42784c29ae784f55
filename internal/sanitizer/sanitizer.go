// Package sanitizer turns untrusted renderer output into markup safe to
// embed in a host document. Dangerous content is rejected outright,
// live-content attributes are stripped, and foreignObject label boxes are
// rewritten into plain positioned text so the result stays portable to
// markdown viewers that do not support embedded HTML.
package sanitizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
)

// Pre-compiled regular expressions. Every pattern uses bounded, negated
// character classes with no nested unbounded quantifiers, keeping matching
// linear on adversarial or malformed input.
var (
	eventHandlerAttr = regexp.MustCompile(`(?is)\s+on[a-z0-9_.:-]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	javascriptHref   = regexp.MustCompile(`(?is)\s+(?:xlink:)?href\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*')`)
	innerTags        = regexp.MustCompile(`<[^>]*>`)
	// Geometry attributes are anchored on preceding whitespace rather than
	// \b: a hyphen is a word boundary, so \bx would also match data-x or
	// max-width on the same tag.
	attrTransform = regexp.MustCompile(`(?:^|\s)transform\s*=\s*"([^"]*)"`)
	attrX         = regexp.MustCompile(`(?:^|\s)x\s*=\s*"([^"]*)"`)
	attrY         = regexp.MustCompile(`(?:^|\s)y\s*=\s*"([^"]*)"`)
	attrWidth     = regexp.MustCompile(`(?:^|\s)width\s*=\s*"([^"]*)"`)
	attrHeight    = regexp.MustCompile(`(?:^|\s)height\s*=\s*"([^"]*)"`)
	multiSpaces   = regexp.MustCompile(`[ \t\r\n]+`)
)

const textStyleAttrs = `font-family="'trebuchet ms',verdana,arial,sans-serif" font-size="16px" fill="#333"`

// Sanitize rewrites raw renderer output into embeddable markup.
//
// Steps, in order, each over the whole string:
//  1. reject any opening script element, case-insensitively - no partial
//     sanitisation of rejected input is ever returned
//  2. strip on<name>= event-handler attributes in all quote forms
//  3. strip href/xlink:href attributes with a javascript: scheme
//  4. rewrite foreignObject label boxes to positioned <text> elements
//
// Stripping runs before the rewrite so geometry is never read off a tag
// still carrying handler attributes, whose quoted values could otherwise
// masquerade as coordinates.
func Sanitize(svg string) (string, error) {
	if strings.Contains(strings.ToLower(svg), "<script") {
		return "", fmt.Errorf("%w: contains a script element", domain.ErrSVGRejected)
	}

	out := eventHandlerAttr.ReplaceAllString(svg, "")
	out = javascriptHref.ReplaceAllString(out, "")
	return rewriteForeignObjects(out), nil
}
