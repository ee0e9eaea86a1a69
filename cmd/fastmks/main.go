package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/viant/fastmks/engine"
	"github.com/viant/fastmks/internal/config"
	"github.com/viant/fastmks/internal/logger"
	"github.com/viant/fastmks/store"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fastmks",
		Usage: "Exact max-kernel search over datasets stored in SQLite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"FASTMKS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the SQLite database (overrides store.path)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			generateCommand(),
			importCommand(),
			searchCommand(),
			showCommand(),
		},
	}
}

// setup loads the configuration and stores it with a logger for commands.
func setup(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if db := c.String("db"); db != "" {
		cfg.Store.Path = db
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	l, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configKey] = cfg
	c.Context = logger.ContextWithLogger(c.Context, l)
	return nil
}

func teardown(c *cli.Context) error {
	_ = logger.FromContext(c.Context).Sync()
	return nil
}

func configFrom(c *cli.Context) config.Config {
	if cfg, ok := c.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// openStore opens the configured database and returns a store over it.
func openStore(ctx context.Context, c *cli.Context) (*store.Store, func(), error) {
	cfg := configFrom(c)
	db, err := engine.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("configure %s: %w", cfg.Store.Path, err)
	}
	s, err := store.New(ctx, db, store.WithLogger(logger.FromContext(ctx)))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	closer := func() {
		if err := db.Close(); err != nil {
			logger.FromContext(ctx).Warn("close database", zap.Error(err))
		}
	}
	return s, closer, nil
}
