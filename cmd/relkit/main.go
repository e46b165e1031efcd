package main

import (
	"context"
	"os"

	"github.com/indaco/relkit/internal/cli"
	"github.com/indaco/relkit/internal/printer"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		printer.New(os.Stderr).Error("Error: " + err.Error())
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	return cli.New().Run(context.Background(), args)
}
