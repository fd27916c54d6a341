package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordExtractor_Extract(t *testing.T) {
	extractor := NewKeywordExtractor()

	keywords := extractor.Extract(
		"Machine learning models power machine learning systems. " +
			"Machine learning research keeps improving models.",
	)

	assert.NotEmpty(t, keywords)
	assert.Contains(t, keywords, "machine")
	assert.Contains(t, keywords, "learning")
	assert.Contains(t, keywords, "machine learning")
}

func TestKeywordExtractor_EmptyInput(t *testing.T) {
	extractor := NewKeywordExtractor()

	assert.Nil(t, extractor.Extract(""))
	assert.Nil(t, extractor.Extract("   \n\t "))
}

func TestKeywordExtractor_DropsStopwordsAndNumbers(t *testing.T) {
	extractor := NewKeywordExtractor()

	keywords := extractor.Extract("The market rallied and the market gained 500 points today in the market")

	assert.Contains(t, keywords, "market")
	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "and")
	assert.NotContains(t, keywords, "500")
}

func TestKeywordExtractor_MaxKeywords(t *testing.T) {
	extractor := NewKeywordExtractor(func(o *KeywordExtractorOptions) {
		o.MaxKeywords = 2
		o.MinScore = 0.01
	})

	keywords := extractor.Extract("alpha beta gamma delta epsilon zeta alpha beta gamma")

	assert.Len(t, keywords, 2)
}

func TestKeywordExtractor_InvalidOptionsFallBack(t *testing.T) {
	extractor := NewKeywordExtractor(func(o *KeywordExtractorOptions) {
		o.MaxKeywords = 0
		o.MinScore = 5
	})

	assert.Equal(t, 10, extractor.maxKeywords)
	assert.Equal(t, 0.2, extractor.minScore)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Hello, world! a 42 go2 rocks")

	assert.Equal(t, []string{"hello", "world", "go2", "rocks"}, tokens)
}
