package domain

import (
	"fmt"
	"time"
)

// CardState is the learning state of a card for one user.
//
// The integer values are the persisted encoding and must not change.
type CardState int

const (
	StateNew        CardState = 0 // introduced, never reviewed
	StateLearning   CardState = 1
	StateReview     CardState = 2
	StateRelearning CardState = 3
	StateSuspended  CardState = 4 // frozen; the scheduler never advances it
)

var stateNames = map[CardState]string{
	StateNew:        "NEW",
	StateLearning:   "LEARNING",
	StateReview:     "REVIEW",
	StateRelearning: "RELEARNING",
	StateSuspended:  "SUSPENDED",
}

// String returns the canonical name of the state, or "CardState(n)" for
// unknown values.
func (s CardState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CardState(%d)", int(s))
}

// IsValid reports whether s is one of the known states.
func (s CardState) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// Rating is the user's assessment of recall quality. The numeric encoding
// (1..4) round-trips through persistence and the HTTP API.
type Rating int

const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

var ratingNames = map[Rating]string{
	RatingAgain: "AGAIN",
	RatingHard:  "HARD",
	RatingGood:  "GOOD",
	RatingEasy:  "EASY",
}

// String returns the canonical name of the rating, or "Rating(n)" for
// unknown values.
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// IsValid reports whether r is in the accepted range AGAIN..EASY.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// SchedulingInfo holds the spaced-repetition memory state for one
// (user, card) pair. Exactly one row exists per pair once the card has been
// introduced to the user; it is mutated only by the scheduler's output.
type SchedulingInfo struct {
	UserID        string     `json:"user_id"`
	CardID        string     `json:"card_id"`
	State         CardState  `json:"state"`
	Stability     float64    `json:"stability"`
	Difficulty    float64    `json:"difficulty"`
	ElapsedDays   int        `json:"elapsed_days"`
	ScheduledDays int        `json:"scheduled_days"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
	Due           time.Time  `json:"due"`
	LastReview    *time.Time `json:"last_review,omitempty"`

	// LearningStep is the current position within the learning or
	// relearning steps. Nil outside LEARNING/RELEARNING.
	LearningStep *int `json:"learning_step,omitempty"`
}

// NewSchedulingInfo returns the scheduling row created when a card is first
// introduced to a user: state NEW, due immediately, zeroed memory parameters.
func NewSchedulingInfo(userID, cardID string, now time.Time) SchedulingInfo {
	return SchedulingInfo{
		UserID: userID,
		CardID: cardID,
		State:  StateNew,
		Due:    now.UTC(),
	}
}

// ReviewLog records a single completed review event. Append-only.
type ReviewLog struct {
	UserID           string    `json:"user_id"`
	CardID           string    `json:"card_id"`
	Rating           Rating    `json:"rating"`
	ReviewedAt       time.Time `json:"reviewed_at"`
	ReviewDurationMS *int      `json:"review_duration_ms,omitempty"`
}
