package main

import (
	"os"

	"github.com/jon4hz/naijamap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
