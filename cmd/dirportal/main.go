package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/dirportal/internal/app"
	"github.com/dropDatabas3/dirportal/internal/config"
	"github.com/dropDatabas3/dirportal/internal/http/server"
	"github.com/dropDatabas3/dirportal/internal/metrics"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"

	// Adapters de identity store: se registran vía init()
	_ "github.com/dropDatabas3/dirportal/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/dirportal/internal/store/adapters/pg"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "dirportal:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("DIRPORTAL_CONFIG"), "ruta al YAML de configuración (env DIRPORTAL_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, ServiceName: "dirportal", Version: version})
	defer func() { _ = logger.Sync() }()
	log := logger.L().With(logger.Component("main"))

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("shutdown cleanup failed", logger.Err(err))
		}
	}()

	// SIGHUP: releer configuración y rebindear el identity store.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				next, err := config.Load(configPath)
				if err != nil {
					log.Error("config reload failed", logger.Err(err))
					continue
				}
				_ = c.Rebind(ctx, next)
			}
		}
	}()

	log.Info("dirportal starting",
		logger.String("addr", cfg.Server.Addr),
		logger.Driver(cfg.Store.Driver),
		logger.String("version", version),
	)
	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, c.Handler)
	return srv.Run(ctx)
}
