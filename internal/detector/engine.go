// Package detector turns classifier probabilities into explainable spam and
// scam decisions, and forwards alert-worthy decisions to an alert sink.
package detector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/raysh454/safeecho/internal/alerts"
	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/raysh454/safeecho/internal/logging"
)

// AlertSink receives detections that crossed a threshold. *alerts.Store
// satisfies it.
type AlertSink interface {
	Add(typ alerts.Type, content, reason string, severity alerts.Severity) alerts.Alert
}

// Engine is the scoring engine. It is safe for concurrent use.
type Engine struct {
	cfg      Config
	fixtures Fixtures
	voice    VoiceScorer
	sink     AlertSink
	logger   logging.Logger

	mu    sync.RWMutex
	model classifier.Classifier
}

// Option configures an Engine.
type Option func(*Engine)

// WithFixtures replaces the default demo fixtures.
func WithFixtures(f Fixtures) Option {
	return func(e *Engine) { e.fixtures = f.Clone() }
}

// WithVoiceScorer replaces the simulated voice scorer.
func WithVoiceScorer(v VoiceScorer) Option {
	return func(e *Engine) {
		if v != nil {
			e.voice = v
		}
	}
}

// NewEngine builds an engine. model may be nil, in which case classification
// fails with ErrModelUnavailable until SetModel is called.
func NewEngine(cfg Config, model classifier.Classifier, sink AlertSink, logger logging.Logger, opts ...Option) (*Engine, error) {
	if sink == nil {
		return nil, errors.New("detector: nil alert sink")
	}
	if logger == nil {
		return nil, errors.New("detector: nil logger; please pass a valid logging.Logger")
	}
	if cfg.SpamLabel == "" {
		cfg.SpamLabel = DefaultSpamLabel
	}

	e := &Engine{
		cfg:      cfg,
		fixtures: DefaultFixtures(),
		sink:     sink,
		logger:   logger.With(logging.Component("detector")),
		model:    model,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.voice == nil {
		e.voice = NewRandomVoiceScorer(cfg.VoiceSeed)
	}

	e.logger.Info("detector constructed",
		logging.F("model_loaded", model != nil),
		logging.F("spam_label", cfg.SpamLabel),
		logging.F("fixtures", cfg.Fixtures),
	)
	return e, nil
}

// SetModel swaps the classifier; nil unloads it.
func (e *Engine) SetModel(m classifier.Classifier) {
	e.mu.Lock()
	e.model = m
	e.mu.Unlock()
}

// Ready reports whether a classifier is loaded.
func (e *Engine) Ready() bool {
	return e.classifier() != nil
}

func (e *Engine) classifier() classifier.Classifier {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// fixturesEnabled reports whether fixtures may answer given model state.
func (e *Engine) fixturesEnabled(model classifier.Classifier) bool {
	if !e.cfg.Fixtures {
		return false
	}
	return model != nil || !e.cfg.FixturesRequireModel
}

// ClassifyText decides whether text is spam. A spam decision records a text
// alert. On error nothing is recorded.
func (e *Engine) ClassifyText(ctx context.Context, text string) (*TextResult, error) {
	model := e.classifier()

	if e.fixturesEnabled(model) {
		if fx, ok := e.fixtures.text(text); ok {
			e.logger.Info("text fixture matched", logging.F("reason", fx.Reason))
			res := &TextResult{IsSpam: fx.Score > SpamThreshold, Score: fx.Score, Reason: fx.Reason}
			if res.IsSpam {
				e.sink.Add(alerts.TypeText, text, res.Reason, alerts.SeverityHigh)
			}
			return res, nil
		}
	}

	if model == nil {
		return nil, ErrModelUnavailable
	}

	p, err := e.spamProbability(model, text)
	if err != nil {
		return nil, err
	}

	res := &TextResult{IsSpam: p > SpamThreshold, Score: p, Reason: ReasonSafe}
	if res.IsSpam {
		res.Reason = ReasonSuspicious
	}
	e.logger.Debug("classified text", logging.F("score", p), logging.F("is_spam", res.IsSpam))

	if res.IsSpam {
		e.sink.Add(alerts.TypeText, text, res.Reason, alerts.SeverityHigh)
	}
	return res, nil
}

// ClassifyAudio decides whether a call is a scam and whether the voice is
// synthetic. Either finding records a call alert. features is passed to the
// voice scorer untouched.
func (e *Engine) ClassifyAudio(ctx context.Context, transcript string, features map[string]any) (*AudioResult, error) {
	model := e.classifier()

	if e.fixturesEnabled(model) {
		if fx, ok := e.fixtures.call(transcript); ok {
			e.logger.Info("call fixture matched", logging.F("reasons", fx.Reasons))
			res := &AudioResult{
				IsScam:          fx.IsScam,
				IsDeepfake:      fx.IsDeepfake,
				TranscriptScore: fx.TranscriptScore,
				VoiceScore:      fx.VoiceScore,
				Reasons:         fx.Reasons,
			}
			if res.Reasons == nil {
				res.Reasons = []string{}
			}
			if res.IsScam || res.IsDeepfake {
				e.sink.Add(alerts.TypeCall, transcript, strings.Join(res.Reasons, ", "), alerts.SeverityHigh)
			}
			return res, nil
		}
	}

	if model == nil {
		return nil, ErrModelUnavailable
	}

	ts, err := e.spamProbability(model, transcript)
	if err != nil {
		return nil, err
	}

	vs, err := e.voice.ScoreVoice(ctx, VoiceSample{Transcript: transcript, TranscriptScore: ts, Features: features})
	if err != nil {
		return nil, fmt.Errorf("detector: scoring voice: %w", err)
	}
	if math.IsNaN(vs) || vs < 0 || vs > 1 {
		return nil, fmt.Errorf("detector: voice score %v outside [0,1]", vs)
	}

	res := &AudioResult{
		IsScam:          ts > SpamThreshold,
		IsDeepfake:      vs > DeepfakeThreshold,
		TranscriptScore: ts,
		VoiceScore:      vs,
		Reasons:         []string{},
	}
	if res.IsScam {
		res.Reasons = append(res.Reasons, ReasonScamSpeech)
	}
	if res.IsDeepfake {
		res.Reasons = append(res.Reasons, ReasonDeepfake)
	}
	e.logger.Debug("classified call",
		logging.F("transcript_score", ts),
		logging.F("voice_score", vs),
		logging.F("is_scam", res.IsScam),
		logging.F("is_deepfake", res.IsDeepfake),
	)

	if res.IsScam || res.IsDeepfake {
		e.sink.Add(alerts.TypeCall, transcript, strings.Join(res.Reasons, ", "), alerts.SeverityHigh)
	}
	return res, nil
}

// spamProbability looks up the spam label by name; classifiers are free to
// order their labels however they like.
func (e *Engine) spamProbability(model classifier.Classifier, text string) (float64, error) {
	probs, err := model.PredictProba(text)
	if err != nil {
		e.logger.Error("classifier failed", logging.Err(err))
		return 0, fmt.Errorf("detector: predicting: %w", err)
	}
	p, ok := probs[e.cfg.SpamLabel]
	if !ok {
		labels := make([]string, 0, len(probs))
		for l := range probs {
			labels = append(labels, l)
		}
		e.logger.Error("spam label missing from classifier output",
			logging.F("want", e.cfg.SpamLabel), logging.F("labels", labels))
		return 0, fmt.Errorf("%w: no %q among %v", ErrInvalidLabelSet, e.cfg.SpamLabel, labels)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %q probability %v outside [0,1]", ErrInvalidLabelSet, e.cfg.SpamLabel, p)
	}
	return p, nil
}
