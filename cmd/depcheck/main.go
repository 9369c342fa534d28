package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcheck/internal/cli"
	pkgerrors "github.com/matzehuels/depcheck/pkg/errors"
)

func main() {
	// Registry tokens and DEPCHECK_* settings may live in a local .env file.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintln(os.Stderr, "Error:", pkgerrors.UserMessage(err))
		}
		os.Exit(code)
	}
}

// Exit codes. Outdated or unused packages are a report, not a failure.
const (
	exitFatal       = 1   // package.json missing or unreadable
	exitUsage       = 2   // bad flags, config or arguments
	exitInterrupted = 130 // standard shell convention for SIGINT
)

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case pkgerrors.IsFatal(err):
		return exitFatal
	}
	return exitUsage
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogWarn)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Adjust the CLI's log level once flags are parsed
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
			c.EnableTracing()
		}

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
