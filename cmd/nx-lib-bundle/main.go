package main

import (
	"os"

	"github.com/novotea/nx-lib-bundle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
