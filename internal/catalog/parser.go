// Package catalog loads card catalogs from JSON files and seeds them into
// the card store. Card ids are content hashes, so reseeding the same
// catalog is idempotent and edited cards get fresh ids.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/easysks/easysks/internal/domain"
)

// Entry is one card as it appears in a catalog file, before an id is
// assigned.
type Entry struct {
	Front       Content  `json:"front" validate:"required"`
	Answer      Content  `json:"answer" validate:"required"`
	ShortAnswer []string `json:"short_answer"`
	Tags        []string `json:"tags" validate:"required,min=1"`
}

// Content mirrors domain.CardContent for catalog files.
type Content struct {
	Text   string  `json:"text" validate:"required"`
	Images []Image `json:"images" validate:"dive"`
}

// Image references an externally stored image.
type Image struct {
	ImageID    string `json:"image_id" validate:"required"`
	StorageKey string `json:"storage_key" validate:"required"`
	AltText    string `json:"alt_text"`
}

var validate = validator.New()

// ParseFile reads a catalog file from disk.
func ParseFile(path string) ([]domain.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a JSON array of entries and converts each into a card with
// a content-hash id. A malformed or invalid entry fails the whole file;
// partially seeded catalogs are worse than rejected ones.
func Parse(r io.Reader) ([]domain.Card, error) {
	var entries []Entry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cards := make([]domain.Card, 0, len(entries))
	for i, entry := range entries {
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		cards = append(cards, entry.toCard())
	}
	return cards, nil
}

func (e Entry) toCard() domain.Card {
	card := domain.Card{
		Front:       contentToDomain(e.Front),
		Answer:      contentToDomain(e.Answer),
		ShortAnswer: e.ShortAnswer,
		Tags:        e.Tags,
	}
	card.CardID = CardID(e)
	return card
}

func contentToDomain(c Content) domain.CardContent {
	out := domain.CardContent{Text: c.Text}
	for _, img := range c.Images {
		out.Images = append(out.Images, domain.CardImage{
			ImageID:    img.ImageID,
			StorageKey: img.StorageKey,
			AltText:    img.AltText,
		})
	}
	return out
}
