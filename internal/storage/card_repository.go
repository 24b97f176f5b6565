package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/easysks/easysks/internal/domain"
)

// CardRepository implements study.CardStore. Content fields are stored as
// JSON text; the position column fixes the enumeration order, which the
// study service's new-card introduction follows.
type CardRepository struct {
	ext sqlx.ExtContext
}

type cardRow struct {
	CardID      string `db:"card_id"`
	Front       string `db:"front"`
	Answer      string `db:"answer"`
	ShortAnswer string `db:"short_answer"`
	Tags        string `db:"tags"`
	Position    int    `db:"position"`
}

const cardColumns = "card_id, front, answer, short_answer, tags, position"

func (r *CardRepository) GetByID(ctx context.Context, cardID string) (*domain.Card, error) {
	var row cardRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		"SELECT "+cardColumns+" FROM cards WHERE card_id = ?", cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", cardID, err)
	}
	card, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *CardRepository) GetByTags(ctx context.Context, tags []string) ([]domain.Card, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+cardColumns+` FROM cards
		WHERE EXISTS (
			SELECT 1 FROM json_each(cards.tags) WHERE json_each.value IN (?)
		)
		ORDER BY position, card_id`, tags)
	if err != nil {
		return nil, fmt.Errorf("build tag query: %w", err)
	}
	var rows []cardRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list cards by tags: %w", err)
	}
	return cardsFromRows(rows)
}

func (r *CardRepository) ListAll(ctx context.Context) ([]domain.Card, error) {
	var rows []cardRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		"SELECT "+cardColumns+" FROM cards ORDER BY position, card_id")
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cardsFromRows(rows)
}

// Save upserts a card. New cards are appended at the end of the enumeration
// order; updates keep their position.
func (r *CardRepository) Save(ctx context.Context, card domain.Card) error {
	front, err := json.Marshal(card.Front)
	if err != nil {
		return fmt.Errorf("encode card front: %w", err)
	}
	answer, err := json.Marshal(card.Answer)
	if err != nil {
		return fmt.Errorf("encode card answer: %w", err)
	}
	shortAnswer, err := json.Marshal(emptyIfNil(card.ShortAnswer))
	if err != nil {
		return fmt.Errorf("encode short answer: %w", err)
	}
	tags, err := json.Marshal(emptyIfNil(card.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = r.ext.ExecContext(ctx, `
		INSERT INTO cards (card_id, front, answer, short_answer, tags, position)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM cards))
		ON CONFLICT (card_id) DO UPDATE SET
			front = excluded.front,
			answer = excluded.answer,
			short_answer = excluded.short_answer,
			tags = excluded.tags`,
		card.CardID, string(front), string(answer), string(shortAnswer), string(tags))
	if err != nil {
		return fmt.Errorf("save card %s: %w", card.CardID, err)
	}
	return nil
}

func (row cardRow) toDomain() (domain.Card, error) {
	var card domain.Card
	card.CardID = row.CardID
	if err := json.Unmarshal([]byte(row.Front), &card.Front); err != nil {
		return domain.Card{}, fmt.Errorf("decode front of card %s: %w", row.CardID, err)
	}
	if err := json.Unmarshal([]byte(row.Answer), &card.Answer); err != nil {
		return domain.Card{}, fmt.Errorf("decode answer of card %s: %w", row.CardID, err)
	}
	if err := json.Unmarshal([]byte(row.ShortAnswer), &card.ShortAnswer); err != nil {
		return domain.Card{}, fmt.Errorf("decode short answer of card %s: %w", row.CardID, err)
	}
	if err := json.Unmarshal([]byte(row.Tags), &card.Tags); err != nil {
		return domain.Card{}, fmt.Errorf("decode tags of card %s: %w", row.CardID, err)
	}
	return card, nil
}

func cardsFromRows(rows []cardRow) ([]domain.Card, error) {
	cards := make([]domain.Card, 0, len(rows))
	for _, row := range rows {
		card, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
