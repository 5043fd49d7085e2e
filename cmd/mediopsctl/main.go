package main

import (
	"os"

	"github.com/tair/mediops/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
