package classifier_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *classifier.ModelStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models", "spam_model.db")
	s, err := classifier.OpenModelStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestModelStore_LoadEmpty(t *testing.T) {
	t.Parallel()
	s := openStore(t)

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, classifier.ErrNoModel)
}

func TestModelStore_SaveLoad_SamePredictions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	trained, err := classifier.Train(trainingSet(), 0.5)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, trained))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, trained.Labels(), loaded.Labels())
	assert.Equal(t, trained.VocabularySize(), loaded.VocabularySize())
	assert.InDelta(t, 0.5, loaded.Alpha(), 1e-12)

	for _, text := range []string{
		"claim your free prize",
		"dinner tomorrow?",
		"Your bank account has been compromised",
	} {
		want, err := trained.PredictProba(text)
		require.NoError(t, err)
		got, err := loaded.PredictProba(text)
		require.NoError(t, err)
		for label, p := range want {
			assert.InDelta(t, p, got[label], 1e-12, "label %s text %q", label, text)
		}
	}
}

func TestModelStore_SaveReplacesPrevious(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	first, err := classifier.Train(trainingSet(), 1)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, first))

	second, err := classifier.Train([]classifier.Document{
		{Label: "ham", Text: "hello friend"},
		{Label: "spam", Text: "buy cheap pills"},
	}, 1)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, second))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.VocabularySize(), loaded.VocabularySize())
}

func TestModelStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.db")

	s, err := classifier.OpenModelStore(ctx, path)
	require.NoError(t, err)
	m, err := classifier.Train(trainingSet(), 1)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, m))
	require.NoError(t, s.Close())

	reopened, err := classifier.OpenModelStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ham", "spam"}, loaded.Labels())
}

func TestModelStore_RejectsUntrained(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	require.Error(t, s.Save(context.Background(), nil))
}
