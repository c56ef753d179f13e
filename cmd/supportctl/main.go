package main

import (
	"os"

	"github.com/spec-kit/supportops/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
