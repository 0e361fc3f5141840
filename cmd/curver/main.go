// Command curver edits and serves motion curves.
package main

import (
	"context"
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
