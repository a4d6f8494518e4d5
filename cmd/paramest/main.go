// Command paramest identifies parameters of dynamical system models from observations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "paramest: %v\n", err)
		os.Exit(1)
	}
}
