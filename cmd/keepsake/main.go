package main

import (
	"os"

	"github.com/keepsake-ai/keepsake/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
