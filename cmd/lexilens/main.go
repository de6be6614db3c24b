// Package main is the entry point for the lexilens CLI.
package main

import (
	"os"

	"github.com/heartmarshall/lexilens/cmd/lexilens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
