package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/glossa/internal/cli"
)

func runLogs(args []string) int {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "logs expects exactly one subcommand: latest or clear")
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := newRuntime(ctx, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.Close()

	switch strings.ToLower(fs.Arg(0)) {
	case "latest":
		entry, err := rt.logStore.GetLatest(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load latest log: %v\n", err)
			return 1
		}
		if entry == nil {
			fmt.Println("No log entries exist")
			return 0
		}
		if err := printJSON(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	case "clear":
		if err := rt.logStore.ClearAll(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear logs: %v\n", err)
			return 1
		}
		fmt.Println("All log entries removed")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown logs subcommand: %s\n", fs.Arg(0))
		return 2
	}
}
