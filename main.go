// Package main is the entry point for the autodoc CLI.
package main

import "autodoc.dev/pkg/autodoc/cmd"

func main() {
	cmd.Execute()
}
