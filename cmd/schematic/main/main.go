package main

import (
	"fmt"
	"os"

	"github.com/schematic-dev/schematic/cmd/schematic"
)

func main() {
	rootCmd := schematic.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
