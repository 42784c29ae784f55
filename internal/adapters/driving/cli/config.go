package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change mermaid-preview settings",
	Long: `Reads and writes settings in the TOML config file. Recognised keys
include storage.strategy (inline, base64, sidecar, embedded), renderer.path,
renderer.background, renderer.theme, renderer.config and verbose.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the value of a config key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		value, ok := configStore.Get(args[0])
		if !ok {
			return fmt.Errorf("key not set: %s", args[0])
		}
		cmd.Printf("%v\n", value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config key and persist it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		// Boolean keys such as verbose are stored typed so lookups see a
		// bool, not the literal argument text.
		var value any = args[1]
		switch args[1] {
		case "true":
			value = true
		case "false":
			value = false
		}
		if err := configStore.Set(args[0], value); err != nil {
			return err
		}
		cmd.Printf("Set %s in %s\n", args[0], configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
