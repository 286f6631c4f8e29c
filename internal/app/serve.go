package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horse.fit/glossa/internal/auth"
	"horse.fit/glossa/internal/cli"
	"horse.fit/glossa/internal/httpapi"
	"horse.fit/glossa/internal/translator"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "", "Host interface to bind (default from config)")
	port := fs.Int("port", 0, "HTTP port (default from config)")
	readTimeout := fs.Duration("read-timeout", 0, "HTTP read timeout (default from config)")
	writeTimeout := fs.Duration("write-timeout", 0, "HTTP write timeout (default from config)")
	shutdownTimeout := fs.Duration("shutdown-timeout", 0, "Graceful shutdown timeout (default from config)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rt, err := newRuntime(context.Background(), envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.Close()

	if strings.TrimSpace(rt.cfg.AdminToken) == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_TOKEN is required to serve the admin API")
		return 1
	}
	tokens, err := auth.NewTokenChecker(rt.cfg.AdminToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare admin token: %v\n", err)
		return 1
	}

	gate := translator.NewGate()
	queue := translator.NewQueue(rt.runner, gate, rt.cfg.RunTimeout, rt.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	srv := httpapi.NewServer(httpapi.Deps{
		Pool:      rt.pool,
		Queue:     queue,
		Progress:  rt.progressStore,
		Logs:      rt.logStore,
		Stats:     rt.statsStore,
		LogSource: logSummaries{logs: rt.logStore},
		Settings:  rt.settingsStore,
		Tokens:    tokens,
	}, rt.logger, httpapi.Options{
		Host:            pickString(*host, rt.cfg.HTTPHost),
		Port:            pickInt(*port, rt.cfg.HTTPPort),
		ReadTimeout:     pickDuration(*readTimeout, rt.cfg.ReadTimeout),
		WriteTimeout:    pickDuration(*writeTimeout, rt.cfg.WriteTimeout),
		ShutdownTimeout: pickDuration(*shutdownTimeout, rt.cfg.ShutdownTimeout),
	})

	if err := srv.Start(ctx); err != nil {
		rt.logger.Error().Err(err).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}

func pickString(flagValue, configValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return configValue
}

func pickInt(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func pickDuration(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}
