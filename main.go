package main

import (
	"os"

	"github.com/sqlpilot/sqlpilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
