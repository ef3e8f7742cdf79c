package main

import (
	"os"

	"tzu-threatmodel/cmd/riskcalc/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
