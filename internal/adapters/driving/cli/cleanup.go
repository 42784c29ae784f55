package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup [file]",
	Short: "Remove storage artifacts the document no longer references",
	Long: `Sweeps the document's artifact directory and deletes rendered SVGs
and sidecar files that no marker or image reference in the document still
points at. Only files named after this document are candidates; artifacts
of other documents in the same folder and the render cache are never
touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if previewService == nil {
		return errors.New("preview service not configured")
	}

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	if err := previewService.Cleanup(doc); err != nil {
		return err
	}

	cmd.Printf("Swept unreferenced artifacts for %s\n", args[0])
	return nil
}
