package classifier

import (
	"fmt"
	"math"
	"slices"
)

// DefaultAlpha is the additive (Laplace) smoothing used when none is given.
const DefaultAlpha = 1.0

// NaiveBayes is a multinomial Naive Bayes classifier over l2-normalised
// TF-IDF features. A trained model is read-only and safe for concurrent use.
type NaiveBayes struct {
	labels         []string
	logPrior       []float64
	vocab          map[string]int
	idf            []float64
	featureLogProb [][]float64
	alpha          float64
}

var _ Classifier = (*NaiveBayes)(nil)

// Train fits a model on docs. alpha <= 0 selects DefaultAlpha.
func Train(docs []Document, alpha float64) (*NaiveBayes, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDataset
	}
	if alpha <= 0 {
		alpha = DefaultAlpha
	}

	tokenized := make([][]string, len(docs))
	labelSet := make(map[string]struct{})
	df := make(map[string]int)
	for i, d := range docs {
		toks := Tokenize(d.Text)
		tokenized[i] = toks
		labelSet[d.Label] = struct{}{}

		seen := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(labelSet) < 2 {
		return nil, ErrSingleLabel
	}
	if len(df) == 0 {
		return nil, ErrEmptyVocab
	}

	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	labelIdx := make(map[string]int, len(labels))
	for i, l := range labels {
		labelIdx[l] = i
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	n := float64(len(docs))
	m := &NaiveBayes{
		labels: labels,
		vocab:  make(map[string]int, len(terms)),
		idf:    make([]float64, len(terms)),
		alpha:  alpha,
	}
	for j, term := range terms {
		m.vocab[term] = j
		m.idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	featureCount := make([][]float64, len(labels))
	for c := range featureCount {
		featureCount[c] = make([]float64, len(terms))
	}
	classCount := make([]float64, len(labels))
	for i, d := range docs {
		c := labelIdx[d.Label]
		classCount[c]++
		for j, x := range m.vectorize(tokenized[i]) {
			featureCount[c][j] += x
		}
	}

	m.logPrior = make([]float64, len(labels))
	m.featureLogProb = make([][]float64, len(labels))
	v := float64(len(terms))
	for c := range labels {
		m.logPrior[c] = math.Log(classCount[c] / n)

		total := 0.0
		for _, x := range featureCount[c] {
			total += x
		}
		denom := math.Log(total + alpha*v)
		row := make([]float64, len(terms))
		for j, x := range featureCount[c] {
			row[j] = math.Log(x+alpha) - denom
		}
		m.featureLogProb[c] = row
	}
	return m, nil
}

// vectorize maps tokens to an l2-normalised sparse TF-IDF vector. Tokens
// outside the vocabulary are ignored.
func (m *NaiveBayes) vectorize(tokens []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, tok := range tokens {
		if j, ok := m.vocab[tok]; ok {
			vec[j]++
		}
	}
	norm := 0.0
	for j, tf := range vec {
		x := tf * m.idf[j]
		vec[j] = x
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] /= norm
		}
	}
	return vec
}

func (m *NaiveBayes) jointLogLikelihood(text string) []float64 {
	vec := m.vectorize(Tokenize(text))
	jll := make([]float64, len(m.labels))
	for c := range m.labels {
		s := m.logPrior[c]
		for j, x := range vec {
			s += x * m.featureLogProb[c][j]
		}
		jll[c] = s
	}
	return jll
}

// PredictProba implements Classifier.
func (m *NaiveBayes) PredictProba(text string) (map[string]float64, error) {
	if m == nil || len(m.labels) == 0 {
		return nil, fmt.Errorf("predicting: %w", ErrNoModel)
	}
	jll := m.jointLogLikelihood(text)

	maxLL := slices.Max(jll)
	sum := 0.0
	for _, ll := range jll {
		sum += math.Exp(ll - maxLL)
	}
	lse := maxLL + math.Log(sum)

	out := make(map[string]float64, len(m.labels))
	for c, l := range m.labels {
		out[l] = math.Exp(jll[c] - lse)
	}
	return out, nil
}

// Predict implements Classifier. Ties resolve to the lexically first label.
func (m *NaiveBayes) Predict(text string) (string, error) {
	if m == nil || len(m.labels) == 0 {
		return "", fmt.Errorf("predicting: %w", ErrNoModel)
	}
	jll := m.jointLogLikelihood(text)
	best := 0
	for c := 1; c < len(jll); c++ {
		if jll[c] > jll[best] {
			best = c
		}
	}
	return m.labels[best], nil
}

// Labels implements Classifier.
func (m *NaiveBayes) Labels() []string {
	return slices.Clone(m.labels)
}

// VocabularySize reports the number of distinct terms the model knows.
func (m *NaiveBayes) VocabularySize() int {
	return len(m.vocab)
}

// Alpha returns the smoothing the model was trained with.
func (m *NaiveBayes) Alpha() float64 {
	return m.alpha
}
