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

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "stats accepts at most one subcommand: show, sync or reset")
		return 2
	}

	subcommand := "show"
	if fs.NArg() == 1 {
		subcommand = strings.ToLower(fs.Arg(0))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt, err := newRuntime(ctx, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.Close()

	switch subcommand {
	case "show":
		snap, err := rt.statsStore.Get(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load stats: %v\n", err)
			return 1
		}
		if err := printJSON(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	case "sync":
		snap, err := rt.statsStore.RecomputeFromLogs(ctx, logSummaries{logs: rt.logStore})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync stats with logs: %v\n", err)
			return 1
		}
		if err := printJSON(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	case "reset":
		if err := rt.statsStore.Reset(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset stats: %v\n", err)
			return 1
		}
		fmt.Println("Usage counters reset")
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown stats subcommand: %s\n", subcommand)
		return 2
	}
}
