package sanitizer

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

const (
	foOpenToken  = "<foreignObject"
	foCloseToken = "</foreignObject>"
)

// rewriteForeignObjects converts every foreignObject element into a plain
// positioned <text> element carrying the label's extracted text. Geometry
// comes from an explicit transform attribute (top-left anchored) or from
// x/y/width/height attributes (centred); a box with non-positive extent is
// dropped entirely.
//
// Element extraction is a bounded scan tracking the nesting depth of the
// one known wrapper element, not a regex over nested content, so it stays
// linear on adversarial input.
func rewriteForeignObjects(svg string) string {
	var out strings.Builder
	rest := svg

	for {
		start := strings.Index(rest, foOpenToken)
		if start < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])
		rest = rest[start:]

		openEnd := strings.IndexByte(rest, '>')
		if openEnd < 0 {
			// Malformed opening tag: keep the remainder untouched.
			out.WriteString(rest)
			break
		}
		openTag := rest[:openEnd+1]

		if strings.HasSuffix(openTag, "/>") {
			// Self-closing box carries no label.
			rest = rest[openEnd+1:]
			continue
		}

		inner, after, ok := splitElement(rest[openEnd+1:])
		if !ok {
			// Unmatched closing tag: keep the remainder untouched.
			out.WriteString(rest)
			break
		}

		out.WriteString(textElementFor(openTag, inner))
		rest = after
	}

	return out.String()
}

// splitElement scans content following a foreignObject opening tag and
// returns the inner content and the remainder after the matching close,
// tracking nesting depth and stopping at the first unmatched closing tag.
func splitElement(s string) (inner, after string, ok bool) {
	depth := 1
	pos := 0
	for {
		nextOpen := strings.Index(s[pos:], foOpenToken)
		nextClose := strings.Index(s[pos:], foCloseToken)
		if nextClose < 0 {
			return "", "", false
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			depth++
			pos += nextOpen + len(foOpenToken)
			continue
		}
		depth--
		if depth == 0 {
			closeAt := pos + nextClose
			return s[:closeAt], s[closeAt+len(foCloseToken):], true
		}
		pos += nextClose + len(foCloseToken)
	}
}

// textElementFor builds the replacement <text> element for one label box,
// or "" when the box carries no visible content.
func textElementFor(openTag, inner string) string {
	label := extractLabelText(inner)
	if label == "" {
		return ""
	}

	if m := attrTransform.FindStringSubmatch(openTag); m != nil {
		return fmt.Sprintf(
			`<text transform="%s" dominant-baseline="text-before-edge" %s>%s</text>`,
			m[1], textStyleAttrs, html.EscapeString(label),
		)
	}

	x := floatAttr(attrX, openTag)
	y := floatAttr(attrY, openTag)
	width := floatAttr(attrWidth, openTag)
	height := floatAttr(attrHeight, openTag)
	if width <= 0 || height <= 0 {
		return ""
	}

	return fmt.Sprintf(
		`<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" %s>%s</text>`,
		formatCoord(x+width/2), formatCoord(y+height/2), textStyleAttrs, html.EscapeString(label),
	)
}

// extractLabelText strips nested markup tags from label content, decodes
// text entities, and collapses whitespace runs.
func extractLabelText(inner string) string {
	text := innerTags.ReplaceAllString(inner, " ")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// floatAttr parses a numeric attribute from an opening tag; absent or
// unparsable values read as 0.
func floatAttr(re *regexp.Regexp, tag string) float64 {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m[1]), 64)
	if err != nil {
		return 0
	}
	return v
}

// formatCoord renders a coordinate without a trailing ".0".
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
