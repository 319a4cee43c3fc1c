package knowledge

import (
	"fmt"

	"github.com/storytailor/storytailor/internal/rag/schema"
)

// defaultIDPrefix names the built-in corpus documents. Bootstrap depends on
// these IDs being stable across runs.
const defaultIDPrefix = "default_"

type corpusEntry struct {
	text     string
	source   string
	category string
	theme    string
}

// defaultCorpus is the built-in knowledge base of short factual and
// educational snippets about children's stories.
var defaultCorpus = []corpusEntry{
	{
		text: "In children's stories, bravery means doing the right thing even when feeling afraid. " +
			"It matters to teach children that courage is not the complete absence of fear, " +
			"but acting despite the fear.",
		source:   "Child education principles",
		category: "character_traits",
		theme:    "courage",
	},
	{
		text: "The value of friendship lies in understanding each other, helping in hard times, " +
			"and sharing joy together. Good friends respect and accept each other's differences.",
		source:   "Child development psychology",
		category: "relationships",
		theme:    "friendship",
	},
	{
		text: "Stories about nature and animals help children learn the importance of ecosystems " +
			"and grow a heart that respects every living thing.",
		source:   "Environmental education guide",
		category: "nature",
		theme:    "animals",
	},
	{
		text: "A family's love is unconditional. The bond between parents and children plays a key " +
			"role in a child's emotional stability and self-esteem.",
		source:   "Family psychology",
		category: "relationships",
		theme:    "family",
	},
	{
		text: "Failure and mistakes are opportunities for learning. It is important to tell children " +
			"that failing is okay and to encourage the courage to try again.",
		source:   "Growth mindset research",
		category: "life_lessons",
		theme:    "perseverance",
	},
	{
		text: "Rabbits can actually run very fast, reaching speeds of up to 70 km/h. A rabbit's long " +
			"ears help it hear predators and regulate its body temperature.",
		source:   "Animal encyclopedia",
		category: "animals",
		theme:    "rabbits",
	},
	{
		text: "Many different animals live in the forest. Squirrels, foxes, deer and birds live " +
			"together and form an ecosystem. Each animal plays an important role in the forest.",
		source:   "Basic ecology",
		category: "nature",
		theme:    "forest",
	},
	{
		text: "In adventure stories the hero usually leaves home, explores a new world, overcomes " +
			"challenges and returns having grown. This is the structure of the hero's journey.",
		source:   "Narrative structure theory",
		category: "narrative",
		theme:    "adventure",
	},
}

// defaultDocuments materializes the corpus as documents with their fixed IDs.
func defaultDocuments() []*schema.Document {
	docs := make([]*schema.Document, len(defaultCorpus))
	for i, entry := range defaultCorpus {
		docs[i] = &schema.Document{
			ID:   fmt.Sprintf("%s%d", defaultIDPrefix, i),
			Text: entry.text,
			Metadata: schema.Metadata{
				Source:   entry.source,
				Category: entry.category,
				Theme:    entry.theme,
			},
		}
	}
	return docs
}
