package driven

import "context"

// Renderer is the external collaborator that turns mermaid description text
// into SVG markup. It is invoked as an opaque black box with a text-in,
// bytes-out contract: the call blocks until the subprocess exits.
//
// The returned bytes are untrusted and must pass through the sanitiser
// before they reach a document or the cache.
type Renderer interface {
	// Render produces SVG markup for the given description text.
	// Returns domain.ErrRendererUnavailable when the executable is missing
	// and domain.ErrRenderFailed (wrapped with the process diagnostic text)
	// when the renderer exits non-zero or produces no output.
	Render(ctx context.Context, code string) ([]byte, error)
}
