package prompt

import (
	"sort"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/bbalet/stopwords"
)

// KeywordExtractorOptions configures keyword extraction.
type KeywordExtractorOptions struct {
	// MaxKeywords caps the number of returned keywords.
	MaxKeywords int

	// MinScore drops candidates scoring below this fraction of the top
	// candidate's frequency. Range (0,1].
	MinScore float64
}

// KeywordExtractor extracts salient terms from free text. The language is
// detected per call, stopwords for that language are removed and the
// remaining unigrams and bigrams are ranked by relative frequency.
//
// The zero-cost failure mode matters more than precision here: any text the
// pipeline cannot handle yields an empty slice, never an error.
type KeywordExtractor struct {
	maxKeywords int
	minScore    float64
}

// NewKeywordExtractor constructs an extractor with sensible defaults
// (10 keywords, 0.2 minimum relative score).
func NewKeywordExtractor(optFns ...func(o *KeywordExtractorOptions)) *KeywordExtractor {
	opts := KeywordExtractorOptions{
		MaxKeywords: 10,
		MinScore:    0.2,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxKeywords < 1 {
		opts.MaxKeywords = 10
	}
	if opts.MinScore <= 0 || opts.MinScore > 1 {
		opts.MinScore = 0.2
	}

	return &KeywordExtractor{maxKeywords: opts.MaxKeywords, minScore: opts.MinScore}
}

// Extract returns up to MaxKeywords salient terms from text, most relevant first.
func (e *KeywordExtractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lang := detectLanguage(text)
	cleaned := stopwords.CleanString(text, lang, false)

	tokens := tokenize(cleaned)
	if len(tokens) == 0 {
		return nil
	}

	type candidate struct {
		term  string
		count int
	}

	counts := map[string]int{}
	for _, tok := range tokens {
		counts[tok]++
	}
	// Bigrams capture multi-word terms ("machine learning") that unigram
	// counting would split apart.
	for i := 0; i+1 < len(tokens); i++ {
		counts[tokens[i]+" "+tokens[i+1]]++
	}

	candidates := make([]candidate, 0, len(counts))
	maxCount := 0
	for term, count := range counts {
		candidates = append(candidates, candidate{term: term, count: count})
		if count > maxCount {
			maxCount = count
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		// Prefer longer terms on ties, then lexicographic for determinism.
		li, lj := len(candidates[i].term), len(candidates[j].term)
		if li != lj {
			return li > lj
		}
		return candidates[i].term < candidates[j].term
	})

	var keywords []string
	for _, c := range candidates {
		if float64(c.count)/float64(maxCount) < e.minScore {
			break
		}
		keywords = append(keywords, c.term)
		if len(keywords) >= e.maxKeywords {
			break
		}
	}

	return keywords
}

// detectLanguage returns the ISO 639-1 code of the detected language,
// defaulting to English when detection is inconclusive.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if code := info.Lang.Iso6391(); code != "" {
		return code
	}
	return "en"
}

// tokenize splits cleaned text into lowercase word tokens, dropping single
// characters and pure numbers.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if isNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
