package classifier

import (
	"fmt"
	"slices"
	"strings"
)

// LabelMetrics are the per-label figures of a Report.
type LabelMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarises a model's performance on held-out documents.
type Report struct {
	Accuracy float64                 `json:"accuracy"`
	Support  int                     `json:"support"`
	Labels   map[string]LabelMetrics `json:"labels"`
}

// Evaluate predicts every document and compares against its label.
func Evaluate(c Classifier, docs []Document) (Report, error) {
	rep := Report{Labels: make(map[string]LabelMetrics)}
	if len(docs) == 0 {
		return rep, nil
	}

	tp := make(map[string]int)
	predicted := make(map[string]int)
	actual := make(map[string]int)
	correct := 0
	for _, d := range docs {
		got, err := c.Predict(d.Text)
		if err != nil {
			return Report{}, fmt.Errorf("evaluating: %w", err)
		}
		predicted[got]++
		actual[d.Label]++
		if got == d.Label {
			tp[got]++
			correct++
		}
	}

	rep.Support = len(docs)
	rep.Accuracy = float64(correct) / float64(len(docs))

	labels := make(map[string]struct{})
	for l := range predicted {
		labels[l] = struct{}{}
	}
	for l := range actual {
		labels[l] = struct{}{}
	}
	for l := range labels {
		m := LabelMetrics{Support: actual[l]}
		if predicted[l] > 0 {
			m.Precision = float64(tp[l]) / float64(predicted[l])
		}
		if actual[l] > 0 {
			m.Recall = float64(tp[l]) / float64(actual[l])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		rep.Labels[l] = m
	}
	return rep, nil
}

// String renders the report as a small table.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")

	names := make([]string, 0, len(r.Labels))
	for l := range r.Labels {
		names = append(names, l)
	}
	slices.Sort(names)
	for _, l := range names {
		m := r.Labels[l]
		fmt.Fprintf(&b, "%-12s %9.2f %9.2f %9.2f %9d\n", l, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\n%-12s %29.2f %9d\n", "accuracy", r.Accuracy, r.Support)
	return b.String()
}
