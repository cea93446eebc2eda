// Package main is the entry point for the pageguard admin CLI binary.
package main

import (
	"os"

	cli "pageguard/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
