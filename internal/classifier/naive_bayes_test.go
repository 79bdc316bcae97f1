package classifier_test

import (
	"math"
	"testing"

	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingSet() []classifier.Document {
	return []classifier.Document{
		{Label: "spam", Text: "URGENT! You have won a 1 week FREE membership in our prize draw. Txt WIN to claim"},
		{Label: "spam", Text: "Your bank account has been suspended. Click the link to verify your password now"},
		{Label: "spam", Text: "Congratulations, you won a cash prize! Claim your reward, call now"},
		{Label: "spam", Text: "FREE entry to win a prize. Claim now by texting WIN"},
		{Label: "spam", Text: "Verify your account password urgently via this link or lose access"},
		{Label: "ham", Text: "Are we still meeting for lunch tomorrow at noon?"},
		{Label: "ham", Text: "Mum, I'll be home late tonight, keep dinner warm please"},
		{Label: "ham", Text: "Can you pick up milk and bread on the way back"},
		{Label: "ham", Text: "Thanks for the lovely birthday dinner yesterday"},
		{Label: "ham", Text: "See you at the football practice later, bring the ball"},
	}
}

func TestTrain_ProbabilitiesAreDistribution(t *testing.T) {
	t.Parallel()
	m, err := classifier.Train(trainingSet(), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"ham", "spam"}, m.Labels())
	assert.InDelta(t, classifier.DefaultAlpha, m.Alpha(), 1e-12)
	assert.Positive(t, m.VocabularySize())

	for _, text := range []string{
		"claim your free prize now",
		"lunch tomorrow?",
		"",
		"words the model has never seen",
	} {
		probs, err := m.PredictProba(text)
		require.NoError(t, err)
		require.Len(t, probs, 2)

		sum := 0.0
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "text %q", text)
	}
}

func TestTrain_SeparatesClasses(t *testing.T) {
	t.Parallel()
	m, err := classifier.Train(trainingSet(), 1.0)
	require.NoError(t, err)

	spam, err := m.PredictProba("Click the link to claim your free cash prize")
	require.NoError(t, err)
	assert.Greater(t, spam["spam"], 0.5)

	ham, err := m.PredictProba("see you for dinner tomorrow")
	require.NoError(t, err)
	assert.Less(t, ham["spam"], 0.5)

	label, err := m.Predict("verify your bank password")
	require.NoError(t, err)
	assert.Equal(t, "spam", label)
}

func TestTrain_UnseenTextFallsBackToPriors(t *testing.T) {
	t.Parallel()
	docs := append(trainingSet(), classifier.Document{Label: "ham", Text: "ok cool"})
	m, err := classifier.Train(docs, 1.0)
	require.NoError(t, err)

	probs, err := m.PredictProba("zzqx")
	require.NoError(t, err)
	// 6 ham vs 5 spam documents
	assert.InDelta(t, 6.0/11.0, probs["ham"], 1e-9)
	assert.False(t, math.IsNaN(probs["spam"]))
}

func TestTrain_Errors(t *testing.T) {
	t.Parallel()

	_, err := classifier.Train(nil, 1)
	require.ErrorIs(t, err, classifier.ErrEmptyDataset)

	_, err = classifier.Train([]classifier.Document{
		{Label: "spam", Text: "win prize"},
		{Label: "spam", Text: "claim cash"},
	}, 1)
	require.ErrorIs(t, err, classifier.ErrSingleLabel)

	_, err = classifier.Train([]classifier.Document{
		{Label: "spam", Text: "a"},
		{Label: "ham", Text: "the"},
	}, 1)
	require.ErrorIs(t, err, classifier.ErrEmptyVocab)
}

func TestNaiveBayes_Untrained(t *testing.T) {
	t.Parallel()
	var m *classifier.NaiveBayes

	_, err := m.PredictProba("hello")
	require.ErrorIs(t, err, classifier.ErrNoModel)
	_, err = m.Predict("hello")
	require.ErrorIs(t, err, classifier.ErrNoModel)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	m, err := classifier.Train(trainingSet(), 1.0)
	require.NoError(t, err)

	rep, err := classifier.Evaluate(m, trainingSet())
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Support)
	assert.Greater(t, rep.Accuracy, 0.8)
	require.Contains(t, rep.Labels, "spam")
	assert.Equal(t, 5, rep.Labels["spam"].Support)
	assert.Contains(t, rep.String(), "accuracy")
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"urgent", "bank", "account", "compromised", "click", "http", "bit", "ly", "scam"},
		classifier.Tokenize("URGENT: Your bank account has been compromised. Click http://bit.ly/scam"),
	)
	// fullwidth letters fold to ASCII under NFKC
	assert.Equal(t, []string{"free"}, classifier.Tokenize("ＦＲＥＥ"))
	assert.Empty(t, classifier.Tokenize("a I x"))
}
