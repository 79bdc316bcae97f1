// Package classifier implements the probabilistic text classifier used to
// score messages: a TF-IDF weighted multinomial Naive Bayes model, its SQLite
// persistence, and the dataset plumbing used to train it.
package classifier

import "errors"

var (
	ErrNoModel       = errors.New("classifier: no model stored")
	ErrEmptyDataset  = errors.New("classifier: empty training set")
	ErrSingleLabel   = errors.New("classifier: training set needs at least two labels")
	ErrEmptyVocab    = errors.New("classifier: training set produced an empty vocabulary")
	ErrCorruptModel  = errors.New("classifier: stored model is inconsistent")
	ErrUnknownColumn = errors.New("classifier: dataset column not found")
)

// Classifier is a trained probabilistic classifier over free text.
type Classifier interface {
	// Predict returns the most likely label for text.
	Predict(text string) (string, error)

	// PredictProba returns a probability per label. Values are in [0,1] and
	// sum to 1. Callers must look labels up by name; map order carries no
	// meaning.
	PredictProba(text string) (map[string]float64, error)

	// Labels lists the labels the model can emit.
	Labels() []string
}

// Document is one labelled training example.
type Document struct {
	Label string
	Text  string
}
