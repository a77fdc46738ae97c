// Package main is the entry point for the imagedepot server.
package main

import (
	"os"

	"github.com/glasswing-labs/imagedepot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
