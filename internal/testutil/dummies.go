// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real models or randomness.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/raysh454/safeecho/internal/detector"
	"github.com/raysh454/safeecho/internal/logging"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ErrorCount returns how many Error calls were recorded.
func (l *DummyLogger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Errors)
}

// ─── Classifier ────────────────────────────────────────────────────────

// StubClassifier implements classifier.Classifier with canned output.
// Probs is returned for every input unless PerText has an entry for it.
// Set Err to make every prediction fail.
type StubClassifier struct {
	Probs   map[string]float64
	PerText map[string]map[string]float64
	Err     error

	mu    sync.Mutex
	Calls []string
}

func (s *StubClassifier) PredictProba(text string) (map[string]float64, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, text)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	src := s.Probs
	if p, ok := s.PerText[text]; ok {
		src = p
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

func (s *StubClassifier) Predict(text string) (string, error) {
	probs, err := s.PredictProba(text)
	if err != nil {
		return "", err
	}
	best, bestP := "", -1.0
	for _, l := range s.Labels() {
		if probs[l] > bestP {
			best, bestP = l, probs[l]
		}
	}
	if best == "" {
		return "", errors.New("stub classifier: no labels")
	}
	return best, nil
}

func (s *StubClassifier) Labels() []string {
	labels := make([]string, 0, len(s.Probs))
	for l := range s.Probs {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// CallCount returns how many predictions were requested.
func (s *StubClassifier) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// SpamProbs returns a two-label distribution with the given spam probability.
func SpamProbs(p float64) map[string]float64 {
	return map[string]float64{"ham": 1 - p, "spam": p}
}

// ─── Voice scorer ──────────────────────────────────────────────────────

// FixedVoiceScorer implements detector.VoiceScorer, always returning Score
// (or Err when set).
type FixedVoiceScorer struct {
	Score float64
	Err   error

	mu      sync.Mutex
	Samples []detector.VoiceSample
}

func (f *FixedVoiceScorer) ScoreVoice(_ context.Context, sample detector.VoiceSample) (float64, error) {
	f.mu.Lock()
	f.Samples = append(f.Samples, sample)
	f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Score, nil
}
