package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"horse.fit/glossa/internal/cli"
	"horse.fit/glossa/internal/db"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	lang := fs.String("lang", "", "Target language (required), e.g. de or pt-BR")
	timeout := fs.Duration("timeout", 10*time.Minute, "Run timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "translate expects exactly one positional argument: <set_id>")
		return 2
	}

	setID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || setID <= 0 {
		fmt.Fprintln(os.Stderr, "set_id must be a positive integer")
		return 2
	}
	if strings.TrimSpace(*lang) == "" {
		fmt.Fprintln(os.Stderr, "--lang is required")
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

	report, err := rt.runner.Run(ctx, setID, strings.TrimSpace(*lang))
	if err != nil {
		if db.IsNoRows(err) {
			fmt.Fprintf(os.Stderr, "Translation set %d does not exist\n", setID)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Run failed to start: %v\n", err)
		return 1
	}

	if err := printJSON(report); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}

	if !report.Succeeded() {
		return 1
	}
	return 0
}
