package main

import (
	"os"

	"github.com/gavel-labs/gavel/cmd/gavel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
