package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/raysh454/safeecho/internal/logging"
)

var ErrInvalidTestFraction = errors.New("test fraction must be in [0, 1)")

func trainCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train the spam classifier from labelled CSV files and store it",
		Description: `Each --dataset is path[:label_col:text_col[:encoding]].
Columns default to "label" and "text"; encoding is utf-8, latin-1 or windows-1252.
Labels are lower-cased, so "Spam" and "spam" are the same class.`,
		Flags: []cli.Flag{
			configFlag(),
			modelFlag(),
			logLevelFlag(),
			&cli.StringSliceFlag{
				Name:     "dataset",
				Aliases:  []string{"d"},
				Usage:    "Labelled CSV file; repeatable",
				Required: true,
			},
			&cli.Float64Flag{
				Name:  "test-fraction",
				Usage: "Share of documents held out for evaluation",
				Value: 0.2,
			},
			&cli.UintFlag{
				Name:  "seed",
				Usage: "Shuffle seed for the train/test split",
				Value: 42,
			},
			&cli.Float64Flag{
				Name:  "alpha",
				Usage: "Additive smoothing for Naive Bayes",
				Value: classifier.DefaultAlpha,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

			frac := c.Float64("test-fraction")
			if frac < 0 || frac >= 1 {
				return fmt.Errorf("%w: got %v", ErrInvalidTestFraction, frac)
			}

			var specs []classifier.DatasetSpec
			for _, raw := range c.StringSlice("dataset") {
				spec, err := classifier.ParseDatasetSpec(raw)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			docs, err := classifier.LoadDatasets(ctx, specs...)
			if err != nil {
				return fmt.Errorf("failed to load datasets: %w", err)
			}
			logger.Info("loaded datasets", logging.F("files", len(specs)), logging.F("documents", len(docs)))

			train, test := classifier.Split(docs, frac, uint64(c.Uint("seed")))
			model, err := classifier.Train(train, c.Float64("alpha"))
			if err != nil {
				return fmt.Errorf("failed to train: %w", err)
			}
			if !slices.Contains(model.Labels(), cfg.Detector.SpamLabel) {
				logger.Warn("trained labels do not include the configured spam label; the detector will reject this model",
					logging.F("labels", model.Labels()),
					logging.F("spam_label", cfg.Detector.SpamLabel),
				)
			}

			fmt.Fprintf(out, "trained on %d documents, %d terms, labels %v\n",
				len(train), model.VocabularySize(), model.Labels())
			if len(test) > 0 {
				rep, err := classifier.Evaluate(model, test)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, rep.String())
			}

			path, err := cfg.ModelPath()
			if err != nil {
				return fmt.Errorf("expanding model path: %w", err)
			}
			store, err := classifier.OpenModelStore(ctx, path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(ctx, model); err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}
			fmt.Fprintf(out, "saved model to %s\n", path)
			return nil
		},
	}
}
