// Package safety provides lexical content filtering for children's stories.
package safety

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/pkg/logger"
)

// inappropriateWords are checked before blockedTopics; the first match wins.
var inappropriateWords = []string{
	"kill", "murder", "violence", "blood", "scary", "horror",
	"alcohol", "cigarette", "drug", "gun", "knife",
}

var blockedTopics = []string{
	"war", "crime", "drugs", "adult",
}

// replacement softens a single word with a whole-word pattern.
type replacement struct {
	pattern *regexp.Regexp
	word    string
}

var replacements = []replacement{
	{regexp.MustCompile(`(?i)\bkill\b`), "defeat"},
	{regexp.MustCompile(`(?i)\bmurder\b`), "stop"},
	{regexp.MustCompile(`(?i)\bviolence\b`), "adventure"},
	{regexp.MustCompile(`(?i)\bscary\b`), "mysterious"},
	{regexp.MustCompile(`(?i)\bhorror\b`), "suspense"},
}

var sentenceTerminators = regexp.MustCompile(`[.!?]`)

// Filter checks text against a fixed blocklist and rewrites unsafe wording.
type Filter struct {
	log *logger.Logger
}

func NewFilter(log *logger.Logger) *Filter {
	return &Filter{log: log}
}

// IsSafe reports whether the text is free of blocked words and topics.
// Matching is case-insensitive substring matching; words are checked
// before topics and the first hit is reported.
func (f *Filter) IsSafe(text string) schema.SafetyVerdict {
	lower := strings.ToLower(text)

	for _, word := range inappropriateWords {
		if strings.Contains(lower, word) {
			f.log.Warn(fmt.Sprintf("Unsafe content: word %q", word))
			return schema.SafetyVerdict{
				IsSafe: false,
				Issue:  fmt.Sprintf("Inappropriate word detected: '%s'", word),
			}
		}
	}
	for _, topic := range blockedTopics {
		if strings.Contains(lower, topic) {
			f.log.Warn(fmt.Sprintf("Unsafe content: topic %q", topic))
			return schema.SafetyVerdict{
				IsSafe: false,
				Issue:  fmt.Sprintf("Inappropriate topic detected: '%s'", topic),
			}
		}
	}
	return schema.SafetyVerdict{IsSafe: true}
}

// Sanitize softens a fixed dictionary of words with whole-word replacements.
// It runs regardless of the IsSafe verdict; callers decide when to apply it.
func (f *Filter) Sanitize(text string) string {
	result := text
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.word)
	}
	return result
}

// CheckAgeAppropriateness evaluates sentence complexity against an
// age-tiered recommended maximum and folds in the safety verdict. A single
// length suggestion alone does not disqualify the text.
func (f *Filter) CheckAgeAppropriateness(text string, age int) schema.AgeReport {
	var sentences []string
	for _, s := range sentenceTerminators.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return schema.AgeReport{Appropriate: true, Suggestions: []string{}}
	}

	total := 0
	for _, s := range sentences {
		total += len([]rune(s))
	}
	avgLength := float64(total) / float64(len(sentences))

	maxRecommended := recommendedSentenceLength(age)
	suggestions := []string{}
	if avgLength > float64(maxRecommended) {
		suggestions = append(suggestions, fmt.Sprintf(
			"Sentences may be too long for a %d-year-old. Average sentence length: %.0f chars, recommended: %d chars or less",
			age, avgLength, maxRecommended))
	}

	verdict := f.IsSafe(text)
	if !verdict.IsSafe {
		suggestions = append(suggestions, verdict.Issue)
	}

	return schema.AgeReport{
		Appropriate: verdict.IsSafe && len(suggestions) <= 1,
		Suggestions: suggestions,
		Metrics: schema.AgeMetrics{
			AvgSentenceLength: math.Round(avgLength*10) / 10,
			SentenceCount:     len(sentences),
			TargetAge:         age,
		},
	}
}

func recommendedSentenceLength(age int) int {
	switch {
	case age <= 5:
		return 30
	case age <= 8:
		return 50
	case age <= 12:
		return 80
	default:
		return 100
	}
}
