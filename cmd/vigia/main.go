package main

import (
	"os"

	"github.com/prevenia/vigia/cmd/vigia/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
