package main

import (
	"os"

	"github.com/crownwell/vnscreener/cmd/screener/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
