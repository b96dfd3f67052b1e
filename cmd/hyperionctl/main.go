package main

import (
	"fmt"
	"os"

	"github.com/danmuck/hyperionctl/cmd/hyperionctl/commands"
	"github.com/danmuck/hyperionctl/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hyperionctl: %v\n", err)
		os.Exit(1)
	}
}
