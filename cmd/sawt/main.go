// Package main is the entry point for the sawt CLI.
package main

import (
	"os"

	"github.com/hupe1980/sawt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
