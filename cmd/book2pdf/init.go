package main

import (
	"fmt"

	"github.com/alnah/go-book2pdf/internal/scaffold"
)

// runInit creates a new book project in the target directory.
func runInit(args []string, flags *initFlags, deps *Dependencies) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	err := scaffold.Init(dir, scaffold.Options{
		Title:    flags.title,
		Author:   flags.author,
		Language: flags.language,
	})
	if err != nil {
		return err
	}

	if !flags.common.quiet {
		fmt.Fprintf(deps.Stdout, "Initialized book project in %s\n", dir)
		fmt.Fprintln(deps.Stdout, "Edit config.yaml and chapters/, then run 'book2pdf build'.")
	}
	return nil
}
