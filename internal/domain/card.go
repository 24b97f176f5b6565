package domain

// CardImage references an image stored outside the database
// (e.g. an object-storage key). The bytes themselves are never
// persisted here.
type CardImage struct {
	ImageID    string `json:"image_id"`
	StorageKey string `json:"storage_key"`
	AltText    string `json:"alt_text,omitempty"`
}

// CardContent is a piece of card content combining text and optional images.
type CardContent struct {
	Text   string      `json:"text"`
	Images []CardImage `json:"images,omitempty"`
}

// Card is a single exam question: front, full answer, short-answer bullet
// points and topic tags. Immutable once created except via explicit update.
type Card struct {
	CardID      string      `json:"card_id"`
	Front       CardContent `json:"front"`
	Answer      CardContent `json:"answer"`
	ShortAnswer []string    `json:"short_answer"`
	Tags        []string    `json:"tags"`
}

// HasTag reports whether the card carries the given tag.
func (c Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
