package reading

// Book is one recommendable title in the static catalog.
type Book struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	LexileLevel int    `json:"lexile_level"`
	Description string `json:"description"`
}

// catalog stands in for a real book database.
var catalog = []Book{
	{
		Title:       "The Brave Rabbit's Adventure",
		Author:      "Kim Donghwa",
		LexileLevel: 400,
		Description: "A story of a brave rabbit helping friends in the forest",
	},
	{
		Title:       "The Flying Elephant",
		Author:      "Lee Sangsang",
		LexileLevel: 450,
		Description: "A journey of a little elephant who never gives up on dreams",
	},
	{
		Title:       "Friends of the Magic Forest",
		Author:      "Park Yojung",
		LexileLevel: 380,
		Description: "A friendship story with various animal friends",
	},
}

// Recommend returns catalog titles within 100 Lexile points of the
// reading level. When nothing is close enough, the first two catalog
// entries are returned as a fallback.
func Recommend(readingLevel int) []Book {
	matched := make([]Book, 0, len(catalog))
	for _, book := range catalog {
		diff := book.LexileLevel - readingLevel
		if diff < 0 {
			diff = -diff
		}
		if diff <= 100 {
			matched = append(matched, book)
		}
	}
	if len(matched) == 0 {
		matched = append(matched, catalog[:2]...)
	}
	return matched
}
