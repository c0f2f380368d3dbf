package main

import (
	"fmt"
	"os"

	"fxconvert/internal/app"
)

// @title fxconvert API
// @version 1.0
// @description Converts US dollar amounts using the Treasury rates of exchange.
// @BasePath /api/v1
func main() {
	if err := app.Run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "fxconvert: %v\n", err)
		os.Exit(1)
	}
}
