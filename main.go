package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/iineineno03k/todo-project/config"
	"github.com/iineineno03k/todo-project/modules/activity"
	"github.com/iineineno03k/todo-project/modules/cache"
	"github.com/iineineno03k/todo-project/modules/todo"
	"github.com/iineineno03k/todo-project/modules/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	var configPath string
	var envHelp bool
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to a YAML or TOML config file")
	flag.BoolVar(&envHelp, "env-help", false, "print the supported environment variables and exit")
	flag.Parse()

	if envHelp {
		usage, err := config.Usage()
		if err != nil {
			log.Fatalf("Failed to describe configuration: %v", err)
		}
		fmt.Println(usage)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		logLevel = mono.LogLevelDebug
	case "warn", "warning":
		logLevel = mono.LogLevelWarn
	case "error":
		logLevel = mono.LogLevelError
	}
	logFormat := mono.LogFormatText
	if strings.EqualFold(cfg.LogFormat, "json") {
		logFormat = mono.LogFormatJSON
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(logFormat),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// The cache is optional; without it task reads go straight to the database.
	if cfg.Cache.RedisAddr != "" {
		if err := app.RegisterPlugin(cache.NewPluginModule(cfg.Cache, logger), "cache"); err != nil {
			log.Fatalf("Failed to register cache plugin: %v", err)
		}
	}

	// Order: core domain first, then the event consumer, then the web
	// adapter that depends on both.
	app.Register(todo.NewModule(cfg.Database, logger))
	app.Register(activity.NewModule(cfg.ActivityLimit, logger))
	app.Register(web.NewModule(cfg.HTTP, cfg.Session, cfg.ActivityLimit, logger))

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Application started",
		"addr", cfg.HTTP.Address,
		"db_driver", cfg.Database.Driver,
		"cache", cfg.Cache.RedisAddr != "",
		"sessions", sessionBackend(cfg.Session))

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func sessionBackend(cfg config.SessionConfig) string {
	if cfg.RedisAddr != "" {
		return "redis"
	}
	return "memory"
}
