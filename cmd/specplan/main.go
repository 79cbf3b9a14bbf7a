package main

import (
	"fmt"
	"os"

	"github.com/architeacher/queryspec/internal/cli"
	"github.com/architeacher/queryspec/internal/config"
)

func main() {
	cfg, err := config.Init()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCommandError)
	}

	if err := cli.NewRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
