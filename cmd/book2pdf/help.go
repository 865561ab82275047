package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init       Create a new book project")
	fmt.Fprintln(w, "  build      Build the book PDF (use --watch to rebuild on changes)")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'book2pdf help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the book described by config.yaml into build/<filename>.pdf.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>     Config file name or path (default: config.yaml)")
	fmt.Fprintln(w, "  -w, --watch             Rebuild on file changes until interrupted")
	fmt.Fprintln(w, "      --debounce <d>      Quiet period before a rebuild starts (default 300ms)")
	fmt.Fprintln(w, "  -t, --timeout <d>       PDF generation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -q, --quiet             Only show errors")
	fmt.Fprintln(w, "  -v, --verbose           Show detailed progress")
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf init [directory] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Create a new book project: config.yaml, main.md, a first chapter,")
	fmt.Fprintln(w, "the built-in theme, and an assets directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  directory    Target directory (default: current directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --title <s>         Book title")
	fmt.Fprintln(w, "      --author <s>        Author name")
	fmt.Fprintln(w, "      --language <s>      Document language code (e.g., en, fr)")
	fmt.Fprintln(w, "  -q, --quiet             Only show errors")
}

// runHelp prints help for a specific command.
func runHelp(args []string, deps *Dependencies) {
	if len(args) == 0 {
		printUsage(deps.Stdout)
		return
	}

	switch args[0] {
	case "init":
		printInitUsage(deps.Stdout)
	case "build":
		printBuildUsage(deps.Stdout)
	case "version":
		fmt.Fprintln(deps.Stdout, "Usage: book2pdf version")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(deps.Stdout, "Usage: book2pdf help [command]")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(deps.Stderr, "Unknown command: %s\n", args[0])
		printUsage(deps.Stderr)
	}
}
