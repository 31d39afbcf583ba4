package main

import (
	"os"

	"github.com/wonny/bist-swing/cmd/swing/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
