package classifier

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into lower-cased word tokens of at least two
// characters, after NFKC normalisation, and drops English stop words.
func Tokenize(text string) []string {
	// Casers carry state and must not be shared across goroutines.
	text = cases.Lower(language.Und).String(norm.NFKC.String(text))

	var (
		tokens []string
		word   []rune
	)
	flush := func() {
		if len(word) >= 2 {
			w := string(word)
			if _, stop := stopWords[w]; !stop {
				tokens = append(tokens, w)
			}
		}
		word = word[:0]
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			word = append(word, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

var stopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "could", "did", "do", "does", "doing",
	"down", "during", "each", "few", "for", "from", "further", "had", "has", "have",
	"having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"if", "in", "into", "is", "it", "its", "itself", "just", "me", "more", "most",
	"my", "myself", "no", "nor", "not", "of", "off", "on", "once", "only", "or",
	"other", "ought", "our", "ours", "ourselves", "out", "over", "own", "same",
	"she", "should", "so", "some", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we", "were",
	"what", "when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"would", "you", "your", "yours", "yourself", "yourselves", "also", "amongst",
	"around", "becomes", "beside", "besides", "beyond", "cannot", "co", "de",
	"due", "eg", "else", "etc", "ever", "every", "hence", "however", "ie", "inc",
	"indeed", "latter", "ltd", "many", "may", "might", "must", "namely",
	"neither", "never", "nevertheless", "often", "onto", "per", "perhaps", "rather",
	"re", "seem", "seemed", "since", "still", "thereby", "therefore", "thus",
	"toward", "towards", "upon", "via", "whether", "within", "without", "yet",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
