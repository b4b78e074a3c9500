package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"busyfeed/internal/config"
	"busyfeed/internal/feed"
	appLog "busyfeed/internal/log"
	"busyfeed/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	cacheDir   string
	once       string
	debug      bool
}

func main() {
	appLog.Info("busyfeed starting", "version", "0.1.0-dev")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"owner_timezone", conf.OwnerTimezone,
		"default_tz_fallback", conf.DefaultTZFallback,
		"weeks", conf.Weeks,
		"max_body_bytes", conf.MaxBodyBytes,
		"refresh", conf.RefreshCron,
		"feed_count", len(conf.Feeds),
	)

	fetcher := feed.NewFetcher(flags.cacheDir, conf.MaxBodyBytes)
	server := web.NewServer(conf, fetcher)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once != "" {
		if err := runOnce(ctx, server, flags.once); err != nil {
			appLog.Error("one-shot run failed", err, "feed", flags.once)
			os.Exit(1)
		}
		return
	}

	// Background refresh on the configured cron schedule.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() { server.RefreshAll(ctx) }); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := web.StartServer(ctx, server); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	// Give in-flight log writes a moment to land.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("busyfeed exiting")
}

// runOnce fetches and normalizes a single feed and prints the ICS
// report to stdout.
func runOnce(ctx context.Context, server *web.Server, feedID string) error {
	ics, err := server.NormalizeOnce(ctx, feedID)
	if err != nil {
		return err
	}
	fmt.Print(ics)
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/busyfeed/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "", "Feed cache directory")
	flag.StringVar(&cfg.once, "once", "", "Normalize the given feed ID once, print ICS to stdout and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
