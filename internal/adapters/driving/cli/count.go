package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count [file]",
	Short: "Count source and rendered mermaid blocks in a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	if previewService == nil {
		return errors.New("preview service not configured")
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Source blocks:   %d\n", previewService.CountSourceBlocks(doc))
	cmd.Printf("Rendered blocks: %d\n", previewService.CountRenderedBlocks(doc))
	return nil
}
