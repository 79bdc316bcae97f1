// Package commands defines the safeecho command-line interface.
package commands

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/raysh454/safeecho/internal/app"
	"github.com/raysh454/safeecho/internal/logging"
)

// New returns the root command. Human-readable output goes to out; logs go
// to stderr.
func New(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "safeecho",
		Usage: "Spam, scam-call and synthetic-voice detection for caregivers",
		Commands: []*cli.Command{
			serveCommand(),
			trainCommand(out),
			classifyCommand(out),
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "TOML config file (default: search .safeecho/, ~/.config/safeecho/, /etc/safeecho/)",
	}
}

func modelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "model",
		Aliases: []string{"m"},
		Usage:   "SQLite model file (overrides model.path)",
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, error (overrides log.level)",
	}
}

// setup loads configuration, applies the flags every command shares and
// builds the logger.
func setup(c *cli.Command) (*app.Config, *logging.ZapLogger, error) {
	cfg, used, err := app.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if m := c.String("model"); m != "" {
		cfg.Model.Path = m
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger, err := logging.NewZapLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if used != "" {
		logger.Debug("loaded config", logging.F("path", used))
	}
	return cfg, logger, nil
}
