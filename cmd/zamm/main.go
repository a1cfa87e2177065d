// Package main provides the zamm command-line tool for migrating and
// validating workout corpora.
package main

import (
	"os"

	"github.com/zohar-ui/ParserZamaActive/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
