// Package main is the entry point for the detag CLI.
package main

import (
	"os"

	"github.com/jmylchreest/detag/cmd/detag/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
