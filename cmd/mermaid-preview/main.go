package main

import (
	"os"

	"github.com/dawsh2/mermaid-preview/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
