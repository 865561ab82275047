package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

// testDeps returns dependencies writing to in-memory buffers.
func testDeps() (*Dependencies, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Dependencies{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestRun_Version(t *testing.T) {
	deps, stdout, _ := testDeps()

	if err := run([]string{"version"}, deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "book2pdf "+Version) {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	deps, stdout, _ := testDeps()

	if err := run([]string{"help"}, deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"init", "build", "version"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("usage missing command %q", want)
		}
	}
}

func TestRun_HelpBuild(t *testing.T) {
	deps, stdout, _ := testDeps()

	if err := run([]string{"help", "build"}, deps); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "--watch") {
		t.Error("build help missing --watch")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	deps, _, stderr := testDeps()

	err := run([]string{"frobnicate"}, deps)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("error = %v, want ErrUnknownCommand", err)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Error("usage not printed for unknown command")
	}
}

func TestRun_NoArguments(t *testing.T) {
	deps, _, stderr := testDeps()

	err := run(nil, deps)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("error = %v, want ErrUnknownCommand", err)
	}
	if exitCodeFor(err) != ExitUsage {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitUsage)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Error("usage not printed")
	}
}
