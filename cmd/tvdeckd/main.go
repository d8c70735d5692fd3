// Package main is the entry point for the tvdeckd daemon.
package main

import (
	"os"

	"github.com/mfairchild/tvdeckd/cmd/tvdeckd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
