package main

import (
	"os"

	"github.com/zefrenchwan/docfilters.git/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
