package main

import (
	"os"

	"github.com/unations/matchengine/cmd/matchengine/commands"
)

// main is the entry point for the matchengine CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
