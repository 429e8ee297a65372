// objex-go - interactive explorer for Go values and structured documents.
//
// objex-go lets you walk the standard library, a JSON, YAML or TOML
// document, or a directory of them as a tree: list children, filter and
// fuzzy-search them, and inspect types, previews, docs and source.
package main

import (
	"fmt"
	"os"

	"github.com/Benny93/objex-go/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
