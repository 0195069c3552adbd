package main

import (
	"os"

	"github.com/placementcell/portal/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
