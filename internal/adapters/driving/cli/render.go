package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
)

var (
	renderLine      int
	renderCharacter int
	renderAllFlag   bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render the mermaid block at a position to an SVG artifact",
	Long: `Replaces the mermaid block at the given cursor position (or every
unrendered block with --all) with a storage marker and an image reference
to the rendered SVG artifact.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderLine, "line", "l", 0, "Cursor line (0-based)")
	renderCmd.Flags().IntVarP(&renderCharacter, "character", "c", 0, "Cursor character (0-based)")
	renderCmd.Flags().BoolVar(&renderAllFlag, "all", false, "Render every unrendered block in the document")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if previewService == nil {
		return errors.New("preview service not configured")
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()

	var edits domain.EditSet
	if renderAllFlag {
		var blockErrs []error
		edits, blockErrs = previewService.RenderAll(ctx, doc)
		for _, blockErr := range blockErrs {
			cmd.PrintErrf("Warning: %v\n", blockErr)
		}
	} else {
		cursor := domain.Position{Line: renderLine, Character: renderCharacter}
		edits, err = previewService.RenderEdit(ctx, doc, cursor)
		if err != nil {
			return err
		}
	}

	applied, err := commitEdits(doc, edits)
	if err != nil {
		return err
	}
	if applied == 0 {
		cmd.Println("No mermaid block to render at that position.")
		return nil
	}

	cmd.Printf("Rendered %d block(s) in %s\n", applied, args[0])
	return nil
}
