package main

import (
	"os"

	"github.com/rustyeddy/daywalker/cmd/daywalker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
