package classifier

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/text/encoding/charmap"
)

// DatasetSpec describes one labelled CSV file.
type DatasetSpec struct {
	Path        string
	LabelColumn string
	TextColumn  string
	// Encoding is "utf-8" (default), "latin-1" or "windows-1252".
	Encoding string
}

// ParseDatasetSpec parses "path[:label_col:text_col[:encoding]]". Columns
// default to "label" and "text".
func ParseDatasetSpec(s string) (DatasetSpec, error) {
	parts := strings.Split(s, ":")
	spec := DatasetSpec{LabelColumn: "label", TextColumn: "text", Encoding: "utf-8"}
	switch len(parts) {
	case 1:
	case 3, 4:
		spec.LabelColumn, spec.TextColumn = parts[1], parts[2]
		if len(parts) == 4 {
			spec.Encoding = parts[3]
		}
	default:
		return DatasetSpec{}, fmt.Errorf("invalid dataset spec %q: want path[:label_col:text_col[:encoding]]", s)
	}
	spec.Path = parts[0]
	if spec.Path == "" {
		return DatasetSpec{}, fmt.Errorf("invalid dataset spec %q: empty path", s)
	}
	return spec, nil
}

// LoadDatasets reads every spec concurrently and concatenates the documents
// in spec order. Labels are lower-cased and trimmed; rows with an empty label
// or text are skipped.
func LoadDatasets(ctx context.Context, specs ...DatasetSpec) ([]Document, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyDataset
	}

	results := make([][]Document, len(specs))
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for i, spec := range specs {
		p.Go(func(ctx context.Context) error {
			docs, err := loadDataset(ctx, spec)
			if err != nil {
				return fmt.Errorf("loading %s: %w", spec.Path, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	var all []Document
	for _, docs := range results {
		all = append(all, docs...)
	}
	if len(all) == 0 {
		return nil, ErrEmptyDataset
	}
	return all, nil
}

func loadDataset(ctx context.Context, spec DatasetSpec) ([]Document, error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := decodeReader(f, spec.Encoding)
	if err != nil {
		return nil, err
	}
	return ReadDocuments(ctx, r, spec.LabelColumn, spec.TextColumn)
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ReadDocuments reads a CSV stream with a header row and extracts the label
// and text columns by name.
func ReadDocuments(ctx context.Context, r io.Reader, labelCol, textCol string) ([]Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	li, ti := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case labelCol:
			li = i
		case textCol:
			ti = i
		}
	}
	if li < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, labelCol)
	}
	if ti < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, textCol)
	}

	var docs []Document
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if li >= len(rec) || ti >= len(rec) {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(rec[li]))
		text := rec[ti]
		if label == "" || strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Label: label, Text: text})
	}
	return docs, nil
}

// Split shuffles docs deterministically from seed and holds out
// ceil(len*testFraction) of them for evaluation. At least one document is
// always kept for training.
func Split(docs []Document, testFraction float64, seed uint64) (train, test []Document) {
	shuffled := make([]Document, len(docs))
	copy(shuffled, docs)
	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if testFraction <= 0 || len(shuffled) < 2 {
		return shuffled, nil
	}
	nTest := int(math.Ceil(float64(len(shuffled)) * testFraction))
	nTest = min(nTest, len(shuffled)-1)
	return shuffled[nTest:], shuffled[:nTest]
}
