package main

import (
	"os"

	"cronos-client-sol/cmd/cronos/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
