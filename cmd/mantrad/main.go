// Package main is the mantrad binary entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/EcstasyEngineer/mantrad/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
