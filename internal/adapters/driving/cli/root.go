// Package cli implements the cobra command tree. It is the driving adapter
// standing in for an editor's dispatch layer: it loads document snapshots,
// calls the preview service, applies the returned edit sets, and writes the
// results back to disk.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawsh2/mermaid-preview/internal/adapters/driven/config/file"
	"github.com/dawsh2/mermaid-preview/internal/adapters/driven/storage/disk"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driven"
	"github.com/dawsh2/mermaid-preview/internal/core/ports/driving"
	"github.com/dawsh2/mermaid-preview/internal/core/services"
	"github.com/dawsh2/mermaid-preview/internal/logger"
	"github.com/dawsh2/mermaid-preview/internal/naming"
	"github.com/dawsh2/mermaid-preview/internal/renderer"
	"github.com/dawsh2/mermaid-preview/internal/strategy"
)

// version is set at build time via -ldflags.
var version = "dev"

// Wired services shared by the commands.
var (
	previewService driving.PreviewService
	configStore    driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "mermaid-preview",
	Short: "Render mermaid blocks in markdown documents to SVG artifacts",
	Long: `mermaid-preview replaces fenced mermaid blocks with rendered SVG
artifacts while keeping the original description recoverable, so the
transformation can be reversed at any time.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		verbose := verboseFlag
		if configStore != nil {
			verbose = verbose || configStore.GetBool("verbose")
		}
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose logging")
}

// Execute wires the default services and runs the root command.
func Execute() error {
	if err := initServices(); err != nil {
		return err
	}
	return rootCmd.Execute()
}

// initServices builds the default service graph: TOML config, disk artifact
// store, the configured storage strategy, and the mmdc renderer.
func initServices() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	configStore = cfg

	names := naming.NewSequence(nil)
	store := disk.New()
	strat, err := strategy.New(cfg.GetString("storage.strategy"), names, store)
	if err != nil {
		return err
	}

	previewService = services.NewPreviewService(renderer.New(cfg), strat, store, names)
	return nil
}
