package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dawsh2/mermaid-preview/internal/core/domain"
)

var (
	restoreLine      int
	restoreCharacter int
	restoreAllFlag   bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Restore a rendered block back to its mermaid source",
	Long: `Replaces the rendered block at the given cursor position (or every
rendered block with --all) with the fenced mermaid source recovered from
its storage marker.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().IntVarP(&restoreLine, "line", "l", 0, "Cursor line (0-based)")
	restoreCmd.Flags().IntVarP(&restoreCharacter, "character", "c", 0, "Cursor character (0-based)")
	restoreCmd.Flags().BoolVar(&restoreAllFlag, "all", false, "Restore every rendered block in the document")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	if previewService == nil {
		return errors.New("preview service not configured")
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()

	var edits domain.EditSet
	if restoreAllFlag {
		var blockErrs []error
		edits, blockErrs = previewService.RestoreAll(ctx, doc)
		for _, blockErr := range blockErrs {
			cmd.PrintErrf("Warning: %v\n", blockErr)
		}
	} else {
		cursor := domain.Position{Line: restoreLine, Character: restoreCharacter}
		edits, err = previewService.RestoreEdit(ctx, doc, cursor)
		if err != nil {
			return err
		}
	}

	applied, err := commitEdits(doc, edits)
	if err != nil {
		return err
	}
	if applied == 0 {
		cmd.Println("No rendered block to restore at that position.")
		return nil
	}

	cmd.Printf("Restored %d block(s) in %s\n", applied, args[0])
	return nil
}
