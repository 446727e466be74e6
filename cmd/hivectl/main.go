package main

import (
	"os"

	"github.com/fractalic-hive/hivectl/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
