package main

import (
	"os"

	"github.com/assesskit/assessrec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
