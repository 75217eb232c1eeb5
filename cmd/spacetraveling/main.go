package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/logctx"
	"github.com/eringen/spacetraveling/views"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "warm":
		if err := runWarm(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("spacetraveling %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// setup loads the config named by -config and builds the app with its
// logger. The returned context carries the logger and is canceled on
// SIGINT/SIGTERM.
func setup(name string, args []string) (context.Context, context.CancelFunc, *spacetraveling.App, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (overrides CONFIG_PATH env)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}

	cfg, err := spacetraveling.LoadConfig(*configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx = logctx.Into(ctx, log)

	app := spacetraveling.New(*cfg, views.Funcs(cfg.Site), spacetraveling.WithLogger(log))
	return ctx, cancel, app, nil
}

func runServe(args []string) error {
	ctx, cancel, app, err := setup("serve", args)
	if err != nil {
		return err
	}
	defer cancel()
	defer app.Close()

	logctx.From(ctx).Info("starting spacetraveling",
		slog.String("env", app.Config.Env),
		slog.String("version", version),
	)
	return app.Start(ctx)
}

func runWarm(args []string) error {
	ctx, cancel, app, err := setup("warm", args)
	if err != nil {
		return err
	}
	defer cancel()
	defer app.Close()

	if err := app.Setup(ctx); err != nil {
		return err
	}
	n, err := app.Warm(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("warmed %d posts\n", n)
	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func printUsage() {
	fmt.Println(`spacetraveling - a Prismic-backed blog served with Go, Echo, and templ

Usage:
  spacetraveling <command> [-config path]

Commands:
  serve         Start the HTTP server
  warm          Load every post into the cache and the local mirror
  version       Print the spacetraveling version
  help          Show this help message

Configuration is read from -config, CONFIG_PATH, ./local.yaml or the
environment, in that order.`)
}
