package schema

// Metadata describes a knowledge document. The recognized keys the core
// reads are typed fields; anything else goes into the Extra bag.
type Metadata struct {
	Source   string            `json:"source,omitempty"`
	Category string            `json:"category,omitempty"`
	Theme    string            `json:"theme,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Document is the central data structure of the knowledge base: a text
// snippet, its embedding, and its metadata. Documents are immutable once
// stored.
type Document struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
	Metadata  Metadata  `json:"metadata"`
}

// Match is a single vector index hit: the document ID and its distance to
// the query embedding. Lower distance means more similar.
type Match struct {
	ID       string
	Distance float32
	Source   string
}

// Filter restricts a query to documents whose metadata carries the given
// category and/or theme. Empty fields match everything.
type Filter struct {
	Category string
	Theme    string
}

// Matches reports whether m satisfies the filter.
func (f *Filter) Matches(m Metadata) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && f.Category != m.Category {
		return false
	}
	if f.Theme != "" && f.Theme != m.Theme {
		return false
	}
	return true
}

// RetrievalResult is one ranked retrieval hit, enriched with the full
// document content. Distance is nil when the index did not report one.
type RetrievalResult struct {
	Content  string   `json:"content"`
	Source   string   `json:"source"`
	Metadata Metadata `json:"metadata"`
	Distance *float32 `json:"distance"`
}

// FactCheckResult is the outcome of checking a standalone statement against
// the knowledge base.
type FactCheckResult struct {
	Verified       bool    `json:"verified"`
	Confidence     float64 `json:"confidence"`
	Source         string  `json:"source,omitempty"`
	RelatedContent string  `json:"related_content,omitempty"`
	Message        string  `json:"message"`
}

// StoryResult is the outcome of a story generation request.
type StoryResult struct {
	Story            string   `json:"story"`
	Sources          []string `json:"sources"`
	FactChecked      bool     `json:"fact_checked"`
	ConfidenceScore  float64  `json:"confidence_score"`
	RetrievedContext []string `json:"rag_context,omitempty"`
}

// SafetyVerdict reports whether a text is safe for children and, when it is
// not, the first issue found.
type SafetyVerdict struct {
	IsSafe bool   `json:"is_safe"`
	Issue  string `json:"issue,omitempty"`
}

// AgeMetrics carries the measurements behind an age-appropriateness check.
type AgeMetrics struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	SentenceCount     int     `json:"sentence_count"`
	TargetAge         int     `json:"target_age"`
}

// AgeReport is the outcome of an age-appropriateness check.
type AgeReport struct {
	Appropriate bool       `json:"appropriate"`
	Suggestions []string   `json:"suggestions"`
	Metrics     AgeMetrics `json:"metrics"`
}
