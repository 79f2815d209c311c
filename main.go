package main

import (
	"os"

	"github.com/A-zanke/alumni-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
