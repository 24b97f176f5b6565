package study

import (
	"context"
	"time"

	"github.com/easysks/easysks/internal/domain"
)

// CardStore is the read-mostly store of flashcard content. ListAll must
// enumerate cards in a stable order; introduction order follows it.
type CardStore interface {
	GetByID(ctx context.Context, cardID string) (*domain.Card, error)
	GetByTags(ctx context.Context, tags []string) ([]domain.Card, error)
	ListAll(ctx context.Context) ([]domain.Card, error)
	Save(ctx context.Context, card domain.Card) error
}

// SchedulingStore holds the per-(user, card) scheduling rows.
//
// ListDue and ListAll must return rows ordered by (due ASC, last_review ASC
// with NULLs first, card_id ASC); repeated calls against unchanged data
// return identical sequences.
type SchedulingStore interface {
	Get(ctx context.Context, userID, cardID string) (*domain.SchedulingInfo, error)
	ListDue(ctx context.Context, userID string, before time.Time) ([]domain.SchedulingInfo, error)
	ListAll(ctx context.Context, userID string) ([]domain.SchedulingInfo, error)
	Save(ctx context.Context, info domain.SchedulingInfo) error
}

// ReviewLogStore is the append-only review history. List with an empty
// cardID returns all of the user's entries.
type ReviewLogStore interface {
	Append(ctx context.Context, entry domain.ReviewLog) error
	List(ctx context.Context, userID, cardID string) ([]domain.ReviewLog, error)
}

// Stores bundles the three collaborator stores bound to one transactional
// session.
type Stores struct {
	Cards      CardStore
	Scheduling SchedulingStore
	ReviewLogs ReviewLogStore
}

// UnitOfWork runs fn against a set of stores sharing one transaction
// boundary: every write inside fn commits together or not at all.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
