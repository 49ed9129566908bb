package main

import (
	"fmt"
	"os"

	"github.com/zjy-dev/stuckpoint/cmd/stuckpoint/app"
)

func main() {
	if err := app.NewStuckpointCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
