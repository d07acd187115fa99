package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cleanup := newRootCommand()
	err := cmd.Execute()
	if closeErr := cleanup(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "close log: %v\n", closeErr)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
