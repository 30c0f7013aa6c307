package main

import (
	"os"

	"github.com/spec-kit/community-bot/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
