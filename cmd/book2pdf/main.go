package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand indicates the first argument is not a known command.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	// Best effort: a missing .env file is the normal case.
	_ = godotenv.Load()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	deps := DefaultDeps()
	err := run(os.Args[1:], deps)
	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
	}
	os.Exit(exitCodeFor(err))
}

// run dispatches to the requested command.
func run(args []string, deps *Dependencies) error {
	if len(args) == 0 {
		printUsage(deps.Stderr)
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}

	switch args[0] {
	case "init":
		flags, positional, err := parseInitFlags(args[1:])
		if err != nil {
			return err
		}
		return runInit(positional, flags, deps)

	case "build":
		flags, _, err := parseBuildFlags(args[1:])
		if err != nil {
			return err
		}
		ctx, stop := notifyContext(context.Background())
		defer stop()
		return runBuild(ctx, flags, deps)

	case "version":
		fmt.Fprintf(deps.Stdout, "book2pdf %s\n", Version)
		return nil

	case "help", "--help", "-h":
		runHelp(args[1:], deps)
		return nil

	default:
		printUsage(deps.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}
