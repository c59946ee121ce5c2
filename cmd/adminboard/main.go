// Command adminboard is the admin dashboard CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/adminboard/internal/cli"
	"github.com/rshade/adminboard/internal/engine"
	"github.com/rshade/adminboard/pkg/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitUnconfirmed = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", describe(err))
	}
	return exitCode(err)
}

// exitCode maps an execution error to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrNotConfirmed):
		return exitUnconfirmed
	default:
		return exitError
	}
}

// describe prefers the short message of a dashboard failure.
func describe(err error) string {
	var fe *engine.FetchError
	if errors.As(err, &fe) && fe.Detail() != "" {
		return fe.Message + ": " + fe.Detail()
	}
	return err.Error()
}
