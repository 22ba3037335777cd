// Package main provides a web application that detects an FFmpeg
// installation, verifies a user-supplied path, and keeps the persisted
// configuration value consistent with the visible status.
//
// Usage:
//
//	ffpath [-config path/to/config.json]
//
// If -config is not specified, the tool looks for config.json in the same
// directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/config"
	"github.com/oszuidwest/zwfm-ffpath/internal/notify"
	"github.com/oszuidwest/zwfm-ffpath/internal/resolver"
	"github.com/oszuidwest/zwfm-ffpath/internal/util"
)

// newNotifier returns the notification collaborator. Channels are checked
// per call, so configuring one later needs no restart.
func newNotifier(cfg *config.Config) notify.Notifier {
	return notify.NewResolverNotifier(cfg)
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	slog.Info("using config file", "path", *configPath)

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	srv := NewServer(cfg)
	httpServer := srv.Start()

	// A start without a configured path triggers one auto-detection cycle,
	// the same as a page load with an empty path input.
	if cfg.GetFFmpegPath() == "" {
		go func() {
			if err := srv.resolver.Resolve(context.Background(), resolver.ModeDetect, ""); err != nil {
				slog.Error("startup detection failed", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, util.ShutdownSignals()...)
	<-sigChan

	slog.Info("shutting down")

	srv.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
