package main

import (
	"os"

	"github.com/nordstat/prosjekt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
