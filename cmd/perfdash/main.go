package main

import (
	"os"

	"github.com/wonny/perfdash/cmd/perfdash/commands"
)

// main is the entry point for the perfdash CLI
// ⭐ Unified CLI entry point: go run ./cmd/perfdash [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
