// Package main is the entry point for the bridle CLI.
package main

import (
	"os"

	"github.com/kaiiiiiiiii/bridle/cmd/bridle/commands"
)

func main() {
	os.Exit(commands.Main(os.Stderr))
}
