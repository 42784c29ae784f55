// Package domain defines the core entities for the mermaid preview core.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an immutable text snapshot received once per operation
//   - SourceBlock: a not-yet-rendered mermaid description found in a document
//   - RenderedBlock: a region already replaced by an artifact reference
//   - EditSet: the text-replacement instructions returned to the host editor
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
