package main

import (
	"fmt"
	"os"

	"github.com/penwyp/go-datimer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "datimer: %v\n", err)
		os.Exit(1)
	}
}
