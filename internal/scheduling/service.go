// Package scheduling wraps the FSRS engine behind the application's own
// domain model. All interaction with the engine is confined to this package
// and its mapper; the rest of the application works exclusively with domain
// objects.
package scheduling

import (
	"time"

	"github.com/easysks/easysks/internal/apperr"
	"github.com/easysks/easysks/internal/domain"
	"github.com/easysks/easysks/internal/fsrs"
)

// Service computes review transitions for scheduling rows. It is pure: no
// I/O, no stored state beyond engine configuration.
type Service struct {
	engine *fsrs.Engine
}

// NewService builds a Service around an FSRS engine with the given config.
func NewService(cfg fsrs.Config) (*Service, error) {
	engine, err := fsrs.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{engine: engine}, nil
}

// ReviewCard maps (current state, rating, review time) to the next scheduling
// state and the review-log entry recording the event.
//
// Timestamps are normalized to UTC before use. Suspended rows are returned
// bit-identical: a suspended card never advances regardless of rating.
func (s *Service) ReviewCard(
	info domain.SchedulingInfo,
	rating domain.Rating,
	reviewedAt time.Time,
	durationMS *int,
) (domain.SchedulingInfo, domain.ReviewLog, error) {
	if !rating.IsValid() {
		return domain.SchedulingInfo{}, domain.ReviewLog{},
			apperr.InvalidInput("invalid_rating", "invalid rating: %d", int(rating))
	}

	reviewedAt = reviewedAt.UTC()
	log := domain.ReviewLog{
		UserID:           info.UserID,
		CardID:           info.CardID,
		Rating:           rating,
		ReviewedAt:       reviewedAt,
		ReviewDurationMS: durationMS,
	}

	if info.State == domain.StateSuspended {
		return info, log, nil
	}

	prevState := info.State
	card := s.engine.ReviewCard(toEngineCard(info), toEngineRating(rating), reviewedAt)
	next := fromEngineCard(card, info)

	next.Reps = info.Reps + 1
	next.Lapses = info.Lapses
	if rating == domain.RatingAgain && prevState == domain.StateReview {
		next.Lapses++
	}
	next.ElapsedDays = wholeDays(info.LastReview, reviewedAt)
	next.ScheduledDays = wholeDaysBetween(reviewedAt, next.Due)

	return next, log, nil
}

// Retrievability returns the current probability of recalling the card.
func (s *Service) Retrievability(info domain.SchedulingInfo, now time.Time) float64 {
	return s.engine.Retrievability(toEngineCard(info), now.UTC())
}

func wholeDays(from *time.Time, to time.Time) int {
	if from == nil {
		return 0
	}
	return wholeDaysBetween(*from, to)
}

func wholeDaysBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
