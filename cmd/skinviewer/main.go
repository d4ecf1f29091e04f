// Command skinviewer browses a skin catalog in an interactive 3D window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/app"
	"github.com/Faultbox/skinforge/internal/config"
	"github.com/Faultbox/skinforge/internal/logger"
)

func main() {
	ov := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(ov.Config, ov)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Skinforge Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return
	}
	logger.Info("viewer closed normally")
}
