package main

import (
	"os"

	"github.com/zxg-sec/blfilter/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
