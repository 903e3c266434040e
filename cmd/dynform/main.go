package main

import (
	"os"

	"github.com/abhaystar2004/dynamic-form/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
