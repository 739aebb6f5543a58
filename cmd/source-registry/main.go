// Package main is the entry point for the source registry CLI.
package main

import (
	"os"

	"github.com/novelforge/source-registry/cmd/source-registry/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
