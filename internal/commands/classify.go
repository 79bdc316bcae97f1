package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/raysh454/safeecho/internal/alerts"
	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/raysh454/safeecho/internal/detector"
	"github.com/raysh454/safeecho/internal/logging"
)

var ErrNoInput = errors.New("nothing to classify")

func classifyCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify one message or call transcript against the stored model",
		ArgsUsage: "TEXT...",
		Flags: []cli.Flag{
			configFlag(),
			modelFlag(),
			logLevelFlag(),
			&cli.BoolFlag{
				Name:    "audio",
				Aliases: []string{"a"},
				Usage:   "Treat the input as a call transcript",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				return ErrNoInput
			}

			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

			path, err := cfg.ModelPath()
			if err != nil {
				return fmt.Errorf("expanding model path: %w", err)
			}
			store, err := classifier.OpenModelStore(ctx, path)
			if err != nil {
				return err
			}
			defer store.Close()

			var model classifier.Classifier
			if nb, err := store.Load(ctx); err == nil {
				model = nb
			} else {
				logger.Warn("no usable model", logging.F("path", path), logging.Err(err))
			}

			sink := alerts.NewStore(alerts.WithLogger(logger))
			eng, err := detector.NewEngine(cfg.Detector, model, sink, logger)
			if err != nil {
				return err
			}

			var res any
			if c.Bool("audio") {
				res, err = eng.ClassifyAudio(ctx, text, nil)
			} else {
				res, err = eng.ClassifyText(ctx, text)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
