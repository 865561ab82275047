package main

import (
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common   commonFlags
	watch    bool
	debounce time.Duration
	timeout  string
}

// initFlags holds all flags for the init command.
type initFlags struct {
	common   commonFlags
	title    string
	author   string
	language string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	fs.BoolVarP(&f.watch, "watch", "w", false, "rebuild on file changes until interrupted")
	fs.DurationVar(&f.debounce, "debounce", 0, "quiet period before a rebuild starts (default 300ms)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printBuildUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseInitFlags parses init command flags and returns positional args.
func parseInitFlags(args []string) (*initFlags, []string, error) {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	f := &initFlags{}

	fs.StringVar(&f.title, "title", "", "book title")
	fs.StringVar(&f.author, "author", "", "author name")
	fs.StringVar(&f.language, "language", "", "document language code (e.g., en, fr)")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printInitUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
