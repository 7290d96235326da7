// Package main is the entry point for allurexl: Allure results in, Excel report out.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// version is set at build time via -ldflags. The default is a dev fallback
// for plain `go install` or `go run` usage.
var version = "0.4.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitError carries a specific exit code out of a command. Its message,
// when non-empty, has already been printed by the command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// run executes the command line and returns the process exit code:
// 0 = report written (failing tests included), 1 = configuration or I/O error,
// or a command-specific code carried by exitError.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(stderr, "  ✗ %s\n", ee.msg)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "  ✗ %v\n", err)
	return 1
}
