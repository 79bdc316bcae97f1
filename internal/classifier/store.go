package classifier

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

const modelFormatVersion = "1"

// ModelStore persists a NaiveBayes model in a SQLite database:
//
//	model_meta     key/value (format_version, alpha, trained_at)
//	model_labels   label index -> label, log prior
//	model_terms    term index -> term, idf
//	model_weights  (label, term) -> log P(term | label)
type ModelStore struct {
	db   *sql.DB
	path string
}

// OpenModelStore opens (creating if needed) the SQLite database at path and
// applies the schema.
func OpenModelStore(ctx context.Context, path string) (*ModelStore, error) {
	if path == "" {
		return nil, errors.New("classifier: model path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure model dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening model database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging model database: %w", err)
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &ModelStore{db: db, path: path}, nil
}

// Path returns the database file backing the store.
func (s *ModelStore) Path() string { return s.path }

// Close releases the database handle.
func (s *ModelStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces whatever model is stored with m, atomically.
func (s *ModelStore) Save(ctx context.Context, m *NaiveBayes) (err error) {
	if m == nil || len(m.labels) == 0 {
		return errors.New("classifier: refusing to save an untrained model")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"model_meta", "model_labels", "model_terms", "model_weights"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"format_version": modelFormatVersion,
		"alpha":          strconv.FormatFloat(m.alpha, 'g', -1, 64),
		"trained_at":     time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err = tx.ExecContext(ctx, `INSERT INTO model_meta(key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	for i, l := range m.labels {
		if _, err = tx.ExecContext(ctx, `INSERT INTO model_labels(idx, label, log_prior) VALUES (?, ?, ?)`, i, l, m.logPrior[i]); err != nil {
			return fmt.Errorf("writing label %q: %w", l, err)
		}
	}

	termStmt, err := tx.PrepareContext(ctx, `INSERT INTO model_terms(idx, term, idf) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing term insert: %w", err)
	}
	defer termStmt.Close()
	for term, j := range m.vocab {
		if _, err = termStmt.ExecContext(ctx, j, term, m.idf[j]); err != nil {
			return fmt.Errorf("writing term %q: %w", term, err)
		}
	}

	weightStmt, err := tx.PrepareContext(ctx, `INSERT INTO model_weights(label_idx, term_idx, log_prob) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing weight insert: %w", err)
	}
	defer weightStmt.Close()
	for c, row := range m.featureLogProb {
		for j, lp := range row {
			if _, err = weightStmt.ExecContext(ctx, c, j, lp); err != nil {
				return fmt.Errorf("writing weight (%d,%d): %w", c, j, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the stored model. It returns ErrNoModel when nothing has been
// saved yet.
func (s *ModelStore) Load(ctx context.Context) (*NaiveBayes, error) {
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM model_meta WHERE key = 'format_version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoModel
	}
	if err != nil {
		return nil, fmt.Errorf("reading model version: %w", err)
	}
	if version != modelFormatVersion {
		return nil, fmt.Errorf("%w: format version %q, want %q", ErrCorruptModel, version, modelFormatVersion)
	}

	m := &NaiveBayes{alpha: DefaultAlpha, vocab: make(map[string]int)}

	var alpha string
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM model_meta WHERE key = 'alpha'`).Scan(&alpha); err == nil {
		if a, perr := strconv.ParseFloat(alpha, 64); perr == nil {
			m.alpha = a
		}
	}

	if err := s.loadLabels(ctx, m); err != nil {
		return nil, err
	}
	if err := s.loadTerms(ctx, m); err != nil {
		return nil, err
	}
	if err := s.loadWeights(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *ModelStore) loadLabels(ctx context.Context, m *NaiveBayes) error {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, label, log_prior FROM model_labels ORDER BY idx`)
	if err != nil {
		return fmt.Errorf("reading labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx   int
			label string
			prior float64
		)
		if err := rows.Scan(&idx, &label, &prior); err != nil {
			return fmt.Errorf("scanning label: %w", err)
		}
		if idx != len(m.labels) {
			return fmt.Errorf("%w: label index gap at %d", ErrCorruptModel, idx)
		}
		m.labels = append(m.labels, label)
		m.logPrior = append(m.logPrior, prior)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating labels: %w", err)
	}
	if len(m.labels) < 2 {
		return fmt.Errorf("%w: %d labels stored", ErrCorruptModel, len(m.labels))
	}
	return nil
}

func (s *ModelStore) loadTerms(ctx context.Context, m *NaiveBayes) error {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, term, idf FROM model_terms ORDER BY idx`)
	if err != nil {
		return fmt.Errorf("reading terms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx  int
			term string
			idf  float64
		)
		if err := rows.Scan(&idx, &term, &idf); err != nil {
			return fmt.Errorf("scanning term: %w", err)
		}
		if idx != len(m.idf) {
			return fmt.Errorf("%w: term index gap at %d", ErrCorruptModel, idx)
		}
		m.vocab[term] = idx
		m.idf = append(m.idf, idf)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating terms: %w", err)
	}
	if len(m.idf) == 0 {
		return fmt.Errorf("%w: empty vocabulary", ErrCorruptModel)
	}
	return nil
}

func (s *ModelStore) loadWeights(ctx context.Context, m *NaiveBayes) error {
	m.featureLogProb = make([][]float64, len(m.labels))
	filled := make([]int, len(m.labels))
	for c := range m.featureLogProb {
		m.featureLogProb[c] = make([]float64, len(m.idf))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT label_idx, term_idx, log_prob FROM model_weights`)
	if err != nil {
		return fmt.Errorf("reading weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c, j int
			lp   float64
		)
		if err := rows.Scan(&c, &j, &lp); err != nil {
			return fmt.Errorf("scanning weight: %w", err)
		}
		if c < 0 || c >= len(m.labels) || j < 0 || j >= len(m.idf) {
			return fmt.Errorf("%w: weight (%d,%d) out of range", ErrCorruptModel, c, j)
		}
		m.featureLogProb[c][j] = lp
		filled[c]++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating weights: %w", err)
	}
	for c, n := range filled {
		if n != len(m.idf) {
			return fmt.Errorf("%w: label %q has %d of %d weights", ErrCorruptModel, m.labels[c], n, len(m.idf))
		}
	}
	return nil
}
