package reading

import "testing"

func TestEstimateLexile(t *testing.T) {
	tests := []struct {
		name          string
		sample        string
		wantLexile    int
		wantSentences int
	}{
		{
			name:          "short sentences",
			sample:        "The cat sat. The dog ran.",
			wantLexile:    160,
			wantSentences: 2,
		},
		{
			name:          "no terminator counts as one sentence",
			sample:        "a b c d e",
			wantLexile:    200,
			wantSentences: 1,
		},
		{
			name:          "empty sample clamps to minimum",
			sample:        "",
			wantLexile:    100,
			wantSentences: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EstimateLexile(tt.sample)
			if d.LexileLevel != tt.wantLexile {
				t.Errorf("LexileLevel = %d, want %d", d.LexileLevel, tt.wantLexile)
			}
			if d.SentenceCount != tt.wantSentences {
				t.Errorf("SentenceCount = %d, want %d", d.SentenceCount, tt.wantSentences)
			}
			if d.Method != "heuristic" {
				t.Errorf("Method = %q", d.Method)
			}
		})
	}
}

func TestEstimateLexileUpperClamp(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "word "
	}
	d := EstimateLexile(long)
	if d.LexileLevel != 1500 {
		t.Errorf("expected clamp to 1500, got %d", d.LexileLevel)
	}
}

func TestRecommendFiltersByLevel(t *testing.T) {
	books := Recommend(400)
	if len(books) != 3 {
		t.Fatalf("expected all 3 catalog books within 100 points of 400, got %d", len(books))
	}

	books = Recommend(470)
	for _, book := range books {
		diff := book.LexileLevel - 470
		if diff < 0 {
			diff = -diff
		}
		if diff > 100 {
			t.Errorf("book %q outside the 100 point window", book.Title)
		}
	}
}

func TestRecommendFallback(t *testing.T) {
	books := Recommend(1200)
	if len(books) != 2 {
		t.Fatalf("expected 2 fallback books, got %d", len(books))
	}
	if books[0].Title != "The Brave Rabbit's Adventure" || books[1].Title != "The Flying Elephant" {
		t.Errorf("unexpected fallback books: %v", books)
	}
}
