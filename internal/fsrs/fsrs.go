// Package fsrs implements the FSRS-6 spaced-repetition memory model: a pure
// scheduling engine mapping (card state, rating, review time) to the next
// card state. The formulas are the published FSRS-6 equations; this package
// does not invent memory-model math.
package fsrs

import (
	"fmt"
	"math"
	"time"
)

// State is the engine-level learning stage of a card. The engine has no NEW
// state: a never-reviewed card enters as Learning with step 0 and nil
// stability/difficulty.
type State int

const (
	Learning State = iota + 1
	Review
	Relearning
)

// Rating is the recall-quality grade, Again..Easy encoded 1..4.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// Card is the memory state the engine operates on. Pointer fields are nil
// before the first review (Stability, Difficulty, LastReview) or outside
// step-based states (Step).
type Card struct {
	State      State
	Step       *int
	Stability  *float64
	Difficulty *float64
	Due        time.Time
	LastReview *time.Time
}

// Config parameterizes an Engine. Zero values select the defaults noted per
// field.
type Config struct {
	Weights          [21]float64     // zero array → DefaultWeights
	DesiredRetention float64         // zero → 0.9
	LearningSteps    []time.Duration // nil → [1m, 10m]; empty → no steps
	RelearningSteps  []time.Duration // nil → [10m]; empty → no steps
	MaximumInterval  int             // days; zero → 36500
}

// Engine computes review transitions. It is stateless apart from its
// configuration and safe for concurrent use.
type Engine struct {
	w                [21]float64
	decay            float64 // -w[20]
	factor           float64 // 0.9^(1/decay) - 1
	desiredRetention float64
	learningSteps    []time.Duration
	relearningSteps  []time.Duration
	maximumInterval  int
}

// NewEngine builds an Engine, filling zero config fields with defaults and
// rejecting out-of-bounds values.
func NewEngine(cfg Config) (*Engine, error) {
	w := cfg.Weights
	if w == ([21]float64{}) {
		w = DefaultWeights
	}
	if err := ValidateWeights(w); err != nil {
		return nil, err
	}

	retention := cfg.DesiredRetention
	if retention == 0 {
		retention = 0.9
	}
	if retention <= 0 || retention > 1 {
		return nil, fmt.Errorf("fsrs: desired retention %v out of range (0, 1]", retention)
	}

	maxIvl := cfg.MaximumInterval
	if maxIvl == 0 {
		maxIvl = 36500
	}
	if maxIvl < 0 {
		return nil, fmt.Errorf("fsrs: maximum interval %d must be positive", maxIvl)
	}

	learning := cfg.LearningSteps
	if learning == nil {
		learning = []time.Duration{time.Minute, 10 * time.Minute}
	}
	relearning := cfg.RelearningSteps
	if relearning == nil {
		relearning = []time.Duration{10 * time.Minute}
	}

	decay := -w[20]
	return &Engine{
		w:                w,
		decay:            decay,
		factor:           math.Pow(0.9, 1.0/decay) - 1.0,
		desiredRetention: retention,
		learningSteps:    learning,
		relearningSteps:  relearning,
		maximumInterval:  maxIvl,
	}, nil
}

// ReviewCard processes a review at the given time and returns the next card
// state. The input card is not mutated; the returned Due is always >= now.
func (e *Engine) ReviewCard(card Card, rating Rating, now time.Time) Card {
	now = now.UTC()
	c := card

	var elapsedDays float64
	if c.LastReview != nil {
		elapsedDays = now.Sub(*c.LastReview).Hours() / 24.0
	}
	e.updateMemory(&c, rating, elapsedDays)

	var interval time.Duration
	switch c.State {
	case Learning:
		interval = e.advanceSteps(&c, rating, e.learningSteps)
	case Relearning:
		interval = e.advanceSteps(&c, rating, e.relearningSteps)
	default:
		interval = e.advanceReview(&c, rating)
	}

	c.Due = now.Add(interval)
	lastReview := now
	c.LastReview = &lastReview
	return c
}

// Retrievability returns the probability of recall at the given time, or 0
// for a card that has never been reviewed.
func (e *Engine) Retrievability(card Card, now time.Time) float64 {
	if card.LastReview == nil || card.Stability == nil {
		return 0
	}
	elapsed := now.Sub(*card.LastReview).Hours() / 24.0
	return e.retrievability(elapsed, *card.Stability)
}

// updateMemory sets the card's next stability and difficulty.
func (e *Engine) updateMemory(c *Card, rating Rating, elapsedDays float64) {
	if c.Stability == nil {
		// First review: S₀(G) and D₀(G).
		setF(&c.Stability, e.initialStability(rating))
		setF(&c.Difficulty, clampDifficulty(e.initialDifficulty(rating)))
		return
	}

	stability := *c.Stability
	difficulty := *c.Difficulty
	if elapsedDays < 1 {
		setF(&c.Stability, e.shortTermStability(stability, rating))
	} else {
		r := e.retrievability(elapsedDays, stability)
		if rating == Again {
			setF(&c.Stability, e.forgetStability(difficulty, stability, r))
		} else {
			setF(&c.Stability, e.recallStability(difficulty, stability, r, rating))
		}
	}
	setF(&c.Difficulty, e.nextDifficulty(difficulty, rating))
}

// advanceSteps handles Learning and Relearning transitions and returns the
// interval to the next review.
func (e *Engine) advanceSteps(c *Card, rating Rating, steps []time.Duration) time.Duration {
	step := 0
	if c.Step != nil {
		step = *c.Step
	}

	if len(steps) == 0 || (step >= len(steps) && rating != Again) {
		return e.graduate(c)
	}

	switch rating {
	case Again:
		setI(&c.Step, 0)
		return steps[0]
	case Hard:
		// Hard never advances the step; the first step gets a stretched
		// interval so Hard still lands between Again and Good.
		if step == 0 && len(steps) == 1 {
			return time.Duration(float64(steps[0]) * 1.5)
		}
		if step == 0 && len(steps) >= 2 {
			return (steps[0] + steps[1]) / 2
		}
		return steps[step]
	case Good:
		next := step + 1
		if next >= len(steps) {
			return e.graduate(c)
		}
		setI(&c.Step, next)
		return steps[next]
	default: // Easy
		return e.graduate(c)
	}
}

// advanceReview handles transitions out of the Review state.
func (e *Engine) advanceReview(c *Card, rating Rating) time.Duration {
	if rating == Again && len(e.relearningSteps) > 0 {
		c.State = Relearning
		setI(&c.Step, 0)
		return e.relearningSteps[0]
	}
	c.Step = nil
	days := e.nextInterval(*c.Stability)
	return time.Duration(days) * 24 * time.Hour
}

// graduate moves a card into the Review state.
func (e *Engine) graduate(c *Card) time.Duration {
	c.State = Review
	c.Step = nil
	days := e.nextInterval(*c.Stability)
	return time.Duration(days) * 24 * time.Hour
}

// -- FSRS-6 formulas --------------------------------------------------------

// retrievability computes R(t, S) = (1 + FACTOR*t/S)^DECAY.
func (e *Engine) retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+e.factor*elapsedDays/stability, e.decay)
}

// initialStability is S₀(G) = clamp_s(w[G-1]).
func (e *Engine) initialStability(r Rating) float64 {
	return clampStability(e.w[r-1])
}

// initialDifficulty is D₀(G) = w[4] - e^(w[5]*(G-1)) + 1, unclamped.
func (e *Engine) initialDifficulty(r Rating) float64 {
	return e.w[4] - math.Exp(e.w[5]*float64(r-1)) + 1
}

// nextInterval is I(r, S) = round((S/FACTOR)*(r^(1/DECAY) - 1)), clamped to
// [1, maximumInterval] days.
func (e *Engine) nextInterval(stability float64) int {
	ivl := stability / e.factor * (math.Pow(e.desiredRetention, 1.0/e.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > e.maximumInterval {
		days = e.maximumInterval
	}
	return days
}

// shortTermStability handles same-day reviews:
// SInc = e^(w[17]*(G-3+w[18])) * S^(-w[19]), floored at 1 for Good/Easy.
func (e *Engine) shortTermStability(stability float64, r Rating) float64 {
	inc := math.Exp(e.w[17]*(float64(r)-3+e.w[18])) * math.Pow(stability, -e.w[19])
	if r == Good || r == Easy {
		inc = math.Max(inc, 1.0)
	}
	return clampStability(stability * inc)
}

// recallStability computes S' after a successful cross-day recall.
func (e *Engine) recallStability(d, s, r float64, rating Rating) float64 {
	hardPenalty := 1.0
	if rating == Hard {
		hardPenalty = e.w[15]
	}
	easyBonus := 1.0
	if rating == Easy {
		easyBonus = e.w[16]
	}
	return s * (1 + math.Exp(e.w[8])*
		(11-d)*
		math.Pow(s, -e.w[9])*
		(math.Exp((1-r)*e.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes S' after a cross-day lapse, capped so forgetting
// never raises stability above the short-term path.
func (e *Engine) forgetStability(d, s, r float64) float64 {
	long := e.w[11] *
		math.Pow(d, -e.w[12]) *
		(math.Pow(s+1, e.w[13]) - 1) *
		math.Exp((1-r)*e.w[14])
	short := s / math.Exp(e.w[17]*e.w[18])
	return math.Min(long, short)
}

// nextDifficulty applies linear damping and mean reversion toward D₀(Easy).
func (e *Engine) nextDifficulty(difficulty float64, r Rating) float64 {
	deltaD := -e.w[6] * (float64(r) - 3)
	damped := difficulty + (10-difficulty)*deltaD/9
	reverted := e.w[7]*e.initialDifficulty(Easy) + (1-e.w[7])*damped
	return clampDifficulty(reverted)
}

func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}

// setF stores v behind a fresh pointer so callers' cards are never aliased.
func setF(dst **float64, v float64) {
	*dst = &v
}

func setI(dst **int, v int) {
	*dst = &v
}
