package driving

import (
	"context"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
)

// PreviewService turns documents into text-replacement instructions that
// render mermaid blocks to artifacts and back. Each call receives an
// immutable document snapshot; the service never retains it.
type PreviewService interface {
	// RenderEdit renders the source block at the cursor and returns the
	// replacement edit. Returns (nil, nil) when no source block is there.
	RenderEdit(ctx context.Context, doc domain.Document, cursor domain.Position) (domain.EditSet, error)

	// RestoreEdit replaces the rendered block at the cursor with its
	// original fenced description. Returns (nil, nil) when no rendered
	// block is there.
	RestoreEdit(ctx context.Context, doc domain.Document, cursor domain.Position) (domain.EditSet, error)

	// RenderAll renders every unrendered block in the document. Per-block
	// failures are collected and reported; they never abort the remaining
	// blocks. Blocks already rendered are skipped without error.
	RenderAll(ctx context.Context, doc domain.Document) (domain.EditSet, []error)

	// RestoreAll restores every rendered block in the document, with the
	// same per-block failure policy as RenderAll.
	RestoreAll(ctx context.Context, doc domain.Document) (domain.EditSet, []error)

	// CountSourceBlocks reports how many unrendered blocks the document
	// holds, used to decide whether a bulk render action is offered.
	CountSourceBlocks(doc domain.Document) int

	// CountRenderedBlocks reports how many rendered blocks the document
	// holds, used to decide whether a bulk restore action is offered.
	CountRenderedBlocks(doc domain.Document) int

	// Cleanup removes artifacts no longer referenced by the document text.
	// Callers must pass the post-edit text: cleanup decisions against stale
	// content would delete artifacts the edit is about to reference.
	Cleanup(doc domain.Document) error
}
