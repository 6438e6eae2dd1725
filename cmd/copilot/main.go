package main

import (
	"fmt"
	"os"

	"github.com/projektcopilot/backend/cmd/copilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
