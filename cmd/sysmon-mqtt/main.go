package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/bootstrap"
	"sysmon-mqtt/internal/config"
	"sysmon-mqtt/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "sysmon-mqtt",
		Usage: "publish sysfs temperatures and network rates to an MQTT broker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "optional YAML config file",
				EnvVars: []string{"SYSMON_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"SYSMON_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "http-addr",
				Usage:   "status API listen address, empty to disable",
				EnvVars: []string{"SYSMON_HTTP_ADDR"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sysmon-mqtt: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("http-addr") {
		cfg.Web.Addr = c.String("http-addr")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	err = bootstrap.RunAll(ctx, cfg, logger)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete")
		return nil
	}
	if err != nil {
		logger.Error("fatal", zap.Error(err))
	}
	return err
}
