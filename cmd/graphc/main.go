// Command graphc generates accelerator code for the catalog graph programs.
//
// Usage:
//
//	graphc generate [flags] [pattern...]
//	graphc verify <dir> <manifest>
//	graphc programs [pattern]
//	graphc targets
//
// Examples:
//
//	graphc generate sssp                        # HIP into the current directory
//	graphc generate -t openacc -o out 'p*' cc   # pagerank and cc for OpenACC
//	graphc generate --config graphc.hcl         # settings from a file
//	graphc verify out sssp.manifest.yaml        # re-check artifact digests
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Version is the graphc release.
var Version = "0.3.0"

// ExitError carries the process exit code of a failed run.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

func main() {
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "graphc:", exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "graphc:", err)
		os.Exit(1)
	}
}

// run executes one command line; it is main without the process exit.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
