package main

import (
	"os"

	"github.com/rmarchant/daysim/cmd/daysim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
