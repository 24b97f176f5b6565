// Package study composes the card and scheduling domains into study
// operations: due and practice queues, new-card introduction, the review
// transaction and dashboard aggregation. All cross-domain composition lives
// here; neither domain imports the other.
package study

import (
	"context"
	"fmt"
	"time"

	"github.com/easysks/easysks/internal/apperr"
	"github.com/easysks/easysks/internal/domain"
	"github.com/easysks/easysks/internal/scheduling"
)

// DefaultQueueCap limits how many cards a single queue hands out, so
// first-time users are not overwhelmed by new-card introduction.
const DefaultQueueCap = 20

// Service provides the study operations for one backing store set.
type Service struct {
	uow       UnitOfWork
	scheduler *scheduling.Service
	queueCap  int
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithQueueCap overrides the queue size cap. Values <= 0 keep the default.
func WithQueueCap(cap int) Option {
	return func(s *Service) {
		if cap > 0 {
			s.queueCap = cap
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a study service.
func NewService(uow UnitOfWork, scheduler *scheduling.Service, opts ...Option) *Service {
	s := &Service{
		uow:       uow,
		scheduler: scheduler,
		queueCap:  DefaultQueueCap,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueueRequest shapes a due- or practice-queue query.
type QueueRequest struct {
	UserID string
	Topic  *domain.Topic // nil = all topics
	Limit  int           // <= 0 = configured cap
	AsOf   *time.Time    // nil = now
}

func (s *Service) resolveQueue(req QueueRequest) (limit int, asOf time.Time) {
	limit = s.queueCap
	if req.Limit > 0 {
		limit = req.Limit
	}
	asOf = s.now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}
	return limit, asOf
}

// GetDueCards returns the due-first study queue: cards whose due timestamp
// has passed, in deterministic order, topped up with newly introduced cards
// until the cap is reached. Introduction persists scheduling rows as a side
// effect of this read.
func (s *Service) GetDueCards(ctx context.Context, req QueueRequest) ([]domain.StudyCard, error) {
	limit, asOf := s.resolveQueue(req)

	var queue []domain.StudyCard
	err := s.uow.Run(ctx, func(ctx context.Context, st Stores) error {
		due, err := s.dueTier(ctx, st, req.UserID, req.Topic, asOf)
		if err != nil {
			return err
		}
		queue = due
		introduced, err := s.introduceNewCards(ctx, st, req.UserID, req.Topic, limit-len(queue), asOf)
		if err != nil {
			return err
		}
		queue = append(queue, introduced...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return queue, nil
}

// GetPracticeCards returns a practice queue with three priority tiers:
// due cards, then scheduled-but-not-due cards, then brand-new cards.
func (s *Service) GetPracticeCards(ctx context.Context, req QueueRequest) ([]domain.StudyCard, error) {
	limit, asOf := s.resolveQueue(req)

	var queue []domain.StudyCard
	err := s.uow.Run(ctx, func(ctx context.Context, st Stores) error {
		due, err := s.dueTier(ctx, st, req.UserID, req.Topic, asOf)
		if err != nil {
			return err
		}
		queue = due
		if len(queue) >= limit {
			return nil
		}

		seen := make(map[string]bool, len(queue))
		for _, sc := range queue {
			seen[sc.Card.CardID] = true
		}

		all, err := st.Scheduling.ListAll(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("list scheduled cards: %w", err)
		}
		for _, info := range all {
			if len(queue) >= limit {
				return nil
			}
			if seen[info.CardID] {
				continue
			}
			sc, ok, err := s.resolveStudyCard(ctx, st, info, req.Topic)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			queue = append(queue, sc)
			seen[info.CardID] = true
		}

		introduced, err := s.introduceNewCards(ctx, st, req.UserID, req.Topic, limit-len(queue), asOf)
		if err != nil {
			return err
		}
		queue = append(queue, introduced...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return queue, nil
}

// dueTier resolves the cards due before asOf; it runs inside an already-open
// unit of work. Due cards are never truncated to the cap: the cap only
// limits how many new cards get introduced on top.
func (s *Service) dueTier(
	ctx context.Context,
	st Stores,
	userID string,
	topic *domain.Topic,
	asOf time.Time,
) ([]domain.StudyCard, error) {
	dueInfos, err := st.Scheduling.ListDue(ctx, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}

	// Store order is the queue order; resolving cards must not re-sort.
	queue := make([]domain.StudyCard, 0, len(dueInfos))
	for _, info := range dueInfos {
		sc, ok, err := s.resolveStudyCard(ctx, st, info, topic)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		queue = append(queue, sc)
	}
	return queue, nil
}

// resolveStudyCard loads the card for a scheduling row and applies the topic
// filter. Rows whose card is missing are tolerated and skipped: orphaned
// scheduling rows are a collaborator data-integrity concern, not a queue
// error.
func (s *Service) resolveStudyCard(
	ctx context.Context,
	st Stores,
	info domain.SchedulingInfo,
	topic *domain.Topic,
) (domain.StudyCard, bool, error) {
	card, err := st.Cards.GetByID(ctx, info.CardID)
	if err != nil {
		return domain.StudyCard{}, false, fmt.Errorf("resolve card %s: %w", info.CardID, err)
	}
	if card == nil {
		return domain.StudyCard{}, false, nil
	}
	if topic != nil && !card.HasTag(string(*topic)) {
		return domain.StudyCard{}, false, nil
	}
	return domain.StudyCard{Card: *card, Scheduling: info}, true, nil
}

// introduceNewCards creates scheduling rows for up to limit cards the user
// has not met yet, in card-store enumeration order. Introducing a card
// commits to tracking it from now on, which is why a queue read writes.
func (s *Service) introduceNewCards(
	ctx context.Context,
	st Stores,
	userID string,
	topic *domain.Topic,
	limit int,
	now time.Time,
) ([]domain.StudyCard, error) {
	if limit <= 0 {
		return nil, nil
	}

	var (
		candidates []domain.Card
		err        error
	)
	if topic != nil {
		candidates, err = st.Cards.GetByTags(ctx, []string{string(*topic)})
	} else {
		candidates, err = st.Cards.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list candidate cards: %w", err)
	}

	var introduced []domain.StudyCard
	for _, card := range candidates {
		if len(introduced) >= limit {
			break
		}
		existing, err := st.Scheduling.Get(ctx, userID, card.CardID)
		if err != nil {
			return nil, fmt.Errorf("check scheduling for card %s: %w", card.CardID, err)
		}
		if existing != nil {
			continue
		}
		info := domain.NewSchedulingInfo(userID, card.CardID, now)
		if err := st.Scheduling.Save(ctx, info); err != nil {
			return nil, fmt.Errorf("introduce card %s: %w", card.CardID, err)
		}
		introduced = append(introduced, domain.StudyCard{Card: card, Scheduling: info})
	}
	return introduced, nil
}

// ReviewRequest shapes a review submission.
type ReviewRequest struct {
	UserID     string
	CardID     string
	Rating     int
	ReviewedAt *time.Time // nil = now
	DurationMS *int
}

// ReviewCard runs one review as a single unit of work: load state, compute
// the next state, persist it and append the review log. Both writes commit
// together or neither is visible.
func (s *Service) ReviewCard(ctx context.Context, req ReviewRequest) (*domain.StudyCard, error) {
	rating := domain.Rating(req.Rating)
	if !rating.IsValid() {
		return nil, apperr.InvalidInput("invalid_rating", "invalid rating: %d", req.Rating)
	}

	reviewedAt := s.now().UTC()
	if req.ReviewedAt != nil {
		reviewedAt = req.ReviewedAt.UTC()
	}

	var result domain.StudyCard
	err := s.uow.Run(ctx, func(ctx context.Context, st Stores) error {
		info, err := st.Scheduling.Get(ctx, req.UserID, req.CardID)
		if err != nil {
			return fmt.Errorf("load scheduling state: %w", err)
		}
		if info == nil {
			return apperr.NotFound("scheduling_not_found",
				"no scheduling info for card %s", req.CardID)
		}

		card, err := st.Cards.GetByID(ctx, req.CardID)
		if err != nil {
			return fmt.Errorf("load card: %w", err)
		}
		if card == nil {
			return apperr.NotFound("card_not_found", "card %s not found", req.CardID)
		}

		next, log, err := s.scheduler.ReviewCard(*info, rating, reviewedAt, req.DurationMS)
		if err != nil {
			return err
		}
		if err := st.Scheduling.Save(ctx, next); err != nil {
			return fmt.Errorf("persist scheduling state: %w", err)
		}
		if err := st.ReviewLogs.Append(ctx, log); err != nil {
			return fmt.Errorf("append review log: %w", err)
		}

		result = domain.StudyCard{Card: *card, Scheduling: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCard returns a single card by id.
func (s *Service) GetCard(ctx context.Context, cardID string) (*domain.Card, error) {
	var card *domain.Card
	err := s.uow.Run(ctx, func(ctx context.Context, st Stores) error {
		var err error
		card, err = st.Cards.GetByID(ctx, cardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperr.NotFound("card_not_found", "card %s not found", cardID)
	}
	return card, nil
}
