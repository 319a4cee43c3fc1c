// Package reading holds the reading level heuristics and the static
// book catalog used for recommendations.
package reading

import (
	"math"
	"strings"
)

const (
	minLexile = 100
	maxLexile = 1500
)

// Diagnosis is the outcome of a reading level assessment.
type Diagnosis struct {
	LexileLevel         int     `json:"lexile_level"`
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`
	Method              string  `json:"method"`
}

// EstimateLexile estimates a Lexile level from a reading sample using a
// sentence length heuristic. A sample without sentence terminators is
// treated as a single sentence.
func EstimateLexile(sample string) Diagnosis {
	wordCount := len(strings.Fields(sample))

	sentenceCount := 0
	for _, s := range strings.Split(sample, ".") {
		if strings.TrimSpace(s) != "" {
			sentenceCount++
		}
	}
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	avg := float64(wordCount) / float64(sentenceCount)
	lexile := int(100 + avg*20)
	if lexile < minLexile {
		lexile = minLexile
	}
	if lexile > maxLexile {
		lexile = maxLexile
	}

	return Diagnosis{
		LexileLevel:         lexile,
		WordCount:           wordCount,
		SentenceCount:       sentenceCount,
		AvgWordsPerSentence: math.Round(avg*10) / 10,
		Method:              "heuristic",
	}
}
