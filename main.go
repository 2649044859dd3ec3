package main

import (
	"os"

	"github.com/braheezy/gomp3/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
