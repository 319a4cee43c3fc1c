package safety

import (
	"strings"
	"testing"

	"github.com/storytailor/storytailor/pkg/logger"
)

func newFilter() *Filter {
	return NewFilter(logger.New("safety-test", ""))
}

func TestIsSafe(t *testing.T) {
	f := newFilter()

	tests := []struct {
		name      string
		text      string
		wantSafe  bool
		wantIssue string
	}{
		{"clean story", "A brave rabbit hopped through the forest", true, ""},
		{"blocked word", "A bad person tried to kill the rabbit", false, "kill"},
		{"blocked word uppercase", "The KNIFE was on the table", false, "knife"},
		{"blocked topic", "A story about war heroes", false, "war"},
		{"word checked before topic", "drugs everywhere", false, "drug"},
		{"empty text", "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := f.IsSafe(tt.text)
			if verdict.IsSafe != tt.wantSafe {
				t.Fatalf("IsSafe(%q) = %v, want %v", tt.text, verdict.IsSafe, tt.wantSafe)
			}
			if tt.wantIssue != "" && !strings.Contains(verdict.Issue, tt.wantIssue) {
				t.Errorf("issue %q does not mention %q", verdict.Issue, tt.wantIssue)
			}
			if tt.wantSafe && verdict.Issue != "" {
				t.Errorf("safe text carried issue %q", verdict.Issue)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	f := newFilter()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"softens scary", "A scary monster appeared", "A mysterious monster appeared"},
		{"softens kill", "The hero had to kill the dragon", "The hero had to defeat the dragon"},
		{"whole words only", "The skillful painter", "The skillful painter"},
		{"case insensitive", "Scary shadows", "mysterious shadows"},
		{"untouched", "A happy little bear", "A happy little bear"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckAgeAppropriatenessLongSentences(t *testing.T) {
	f := newFilter()

	text := "Once upon a time there was a curious little rabbit who wanted to explore every corner of the enormous green forest. The rabbit packed a tiny bag with carrots and set out on a wonderful journey across the meadow."
	report := f.CheckAgeAppropriateness(text, 5)

	if len(report.Suggestions) == 0 {
		t.Fatal("expected at least one suggestion for long sentences at age 5")
	}
	if !strings.Contains(report.Suggestions[0], "too long") {
		t.Errorf("unexpected suggestion %q", report.Suggestions[0])
	}
	if report.Metrics.SentenceCount != 2 {
		t.Errorf("expected 2 sentences, got %d", report.Metrics.SentenceCount)
	}
	if report.Metrics.TargetAge != 5 {
		t.Errorf("expected target age 5, got %d", report.Metrics.TargetAge)
	}
	if !report.Appropriate {
		t.Error("a single length suggestion should not disqualify the text")
	}
}

func TestCheckAgeAppropriatenessShortSentences(t *testing.T) {
	f := newFilter()

	report := f.CheckAgeAppropriateness("The sun rose. Birds sang. A fox smiled.", 5)
	if !report.Appropriate {
		t.Errorf("expected appropriate, suggestions: %v", report.Suggestions)
	}
	if len(report.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", report.Suggestions)
	}
	if report.Metrics.SentenceCount != 3 {
		t.Errorf("expected 3 sentences, got %d", report.Metrics.SentenceCount)
	}
}

func TestCheckAgeAppropriatenessUnsafeAndLong(t *testing.T) {
	f := newFilter()

	text := "The villain wanted to kill everyone in the kingdom and burn every single house down to the very last stone."
	report := f.CheckAgeAppropriateness(text, 5)

	if report.Appropriate {
		t.Error("safety issue plus length issue must disqualify the text")
	}
	if len(report.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", report.Suggestions)
	}
}

func TestCheckAgeAppropriatenessEmptyText(t *testing.T) {
	f := newFilter()

	report := f.CheckAgeAppropriateness("", 8)
	if !report.Appropriate {
		t.Error("empty text must be trivially appropriate")
	}
	if len(report.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", report.Suggestions)
	}
}

func TestRecommendedSentenceLengthTiers(t *testing.T) {
	tests := []struct {
		age  int
		want int
	}{
		{3, 30}, {5, 30}, {6, 50}, {8, 50}, {10, 80}, {12, 80}, {13, 100},
	}
	for _, tt := range tests {
		if got := recommendedSentenceLength(tt.age); got != tt.want {
			t.Errorf("recommendedSentenceLength(%d) = %d, want %d", tt.age, got, tt.want)
		}
	}
}
