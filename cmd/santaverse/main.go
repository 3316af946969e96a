package main

import (
	"os"

	"santaverse/cmd/santaverse/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
