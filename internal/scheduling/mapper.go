package scheduling

import (
	"github.com/easysks/easysks/internal/domain"
	"github.com/easysks/easysks/internal/fsrs"
)

// The engine has no NEW state and looks after stability/difficulty as
// nullable values; these conversions are the only place the two models meet.

func toEngineCard(info domain.SchedulingInfo) fsrs.Card {
	card := fsrs.Card{
		Due:        info.Due,
		LastReview: info.LastReview,
	}

	switch info.State {
	case domain.StateNew:
		card.State = fsrs.Learning
		step := 0
		card.Step = &step
	case domain.StateLearning:
		card.State = fsrs.Learning
		card.Step = stepOrZero(info.LearningStep)
	case domain.StateRelearning:
		card.State = fsrs.Relearning
		card.Step = stepOrZero(info.LearningStep)
	default:
		card.State = fsrs.Review
	}

	// A NEW card has never been reviewed; its zeroed parameters map to nil
	// so the engine initializes them.
	if info.Reps > 0 || info.LastReview != nil {
		stability := info.Stability
		difficulty := info.Difficulty
		card.Stability = &stability
		card.Difficulty = &difficulty
	}
	return card
}

func fromEngineCard(card fsrs.Card, prev domain.SchedulingInfo) domain.SchedulingInfo {
	next := prev
	switch card.State {
	case fsrs.Learning:
		next.State = domain.StateLearning
	case fsrs.Relearning:
		next.State = domain.StateRelearning
	default:
		next.State = domain.StateReview
	}
	if card.Stability != nil {
		next.Stability = *card.Stability
	}
	if card.Difficulty != nil {
		next.Difficulty = *card.Difficulty
	}
	next.Due = card.Due
	next.LastReview = card.LastReview
	next.LearningStep = card.Step
	return next
}

func toEngineRating(r domain.Rating) fsrs.Rating {
	return fsrs.Rating(r)
}

func stepOrZero(step *int) *int {
	if step != nil {
		s := *step
		return &s
	}
	zero := 0
	return &zero
}
