package fsrs

import (
	"testing"
	"time"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func newCard(now time.Time) Card {
	step := 0
	return Card{State: Learning, Step: &step, Due: now}
}

func TestNewEngineDefaults(t *testing.T) {
	e := newTestEngine(t, Config{})
	if e.desiredRetention != 0.9 {
		t.Errorf("desiredRetention = %v, want 0.9", e.desiredRetention)
	}
	if e.maximumInterval != 36500 {
		t.Errorf("maximumInterval = %d, want 36500", e.maximumInterval)
	}
	if len(e.learningSteps) != 2 || len(e.relearningSteps) != 1 {
		t.Errorf("default steps = %v / %v", e.learningSteps, e.relearningSteps)
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	bad := DefaultWeights
	bad[4] = 50.0 // above upper bound
	if _, err := NewEngine(Config{Weights: bad}); err == nil {
		t.Error("expected error for out-of-bounds weights")
	}
	if _, err := NewEngine(Config{DesiredRetention: 1.5}); err == nil {
		t.Error("expected error for retention > 1")
	}
	if _, err := NewEngine(Config{MaximumInterval: -1}); err == nil {
		t.Error("expected error for negative maximum interval")
	}
}

func TestFirstReviewInitializesMemory(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, rating := range []Rating{Again, Hard, Good, Easy} {
		c := e.ReviewCard(newCard(now), rating, now)
		if c.Stability == nil || c.Difficulty == nil {
			t.Fatalf("%v: stability/difficulty not initialized", rating)
		}
		if *c.Stability != clampStability(DefaultWeights[rating-1]) {
			t.Errorf("%v: initial stability = %v, want w[%d] = %v",
				rating, *c.Stability, rating-1, DefaultWeights[rating-1])
		}
		if *c.Difficulty < 1 || *c.Difficulty > 10 {
			t.Errorf("%v: difficulty %v outside [1, 10]", rating, *c.Difficulty)
		}
	}
}

func TestDueNeverBeforeReviewTime(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := newCard(now)
	for i := 0; i < 20; i++ {
		rating := []Rating{Again, Hard, Good, Easy}[i%4]
		c = e.ReviewCard(c, rating, now)
		if c.Due.Before(now) {
			t.Fatalf("review %d (%v): due %v before review time %v", i, rating, c.Due, now)
		}
		if c.LastReview == nil || !c.LastReview.Equal(now) {
			t.Fatalf("review %d: last review not set to review time", i)
		}
		now = c.Due.Add(time.Hour)
	}
}

func TestGoodPathGraduatesThroughLearningSteps(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := e.ReviewCard(newCard(now), Good, now)
	if c.State != Learning {
		t.Fatalf("after first Good: state = %v, want Learning", c.State)
	}
	if c.Step == nil || *c.Step != 1 {
		t.Fatalf("after first Good: step = %v, want 1", c.Step)
	}

	now = c.Due
	c = e.ReviewCard(c, Good, now)
	if c.State != Review {
		t.Fatalf("after second Good: state = %v, want Review", c.State)
	}
	if c.Step != nil {
		t.Fatalf("after graduation: step = %d, want nil", *c.Step)
	}
	if c.Due.Sub(now) < 24*time.Hour {
		t.Errorf("graduated interval %v shorter than a day", c.Due.Sub(now))
	}
}

func TestEasyGraduatesImmediately(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := e.ReviewCard(newCard(now), Easy, now)
	if c.State != Review {
		t.Errorf("state = %v, want Review", c.State)
	}
}

func TestAgainInReviewEntersRelearning(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := e.ReviewCard(newCard(now), Easy, now) // straight to Review
	before := *c.Stability

	now = c.Due.Add(24 * time.Hour)
	c = e.ReviewCard(c, Again, now)
	if c.State != Relearning {
		t.Fatalf("state = %v, want Relearning", c.State)
	}
	if c.Step == nil || *c.Step != 0 {
		t.Fatalf("step = %v, want 0", c.Step)
	}
	if *c.Stability >= before {
		t.Errorf("stability %v did not drop after lapse (was %v)", *c.Stability, before)
	}

	// Good from relearning graduates back to Review.
	now = c.Due
	c = e.ReviewCard(c, Good, now)
	if c.State != Review {
		t.Errorf("after relearning Good: state = %v, want Review", c.State)
	}
}

func TestEmptyStepsGraduateImmediately(t *testing.T) {
	e := newTestEngine(t, Config{
		LearningSteps:   []time.Duration{},
		RelearningSteps: []time.Duration{},
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := e.ReviewCard(newCard(now), Good, now)
	if c.State != Review {
		t.Fatalf("state = %v, want Review", c.State)
	}

	// With no relearning steps an Again stays in Review.
	now = c.Due.Add(24 * time.Hour)
	c = e.ReviewCard(c, Again, now)
	if c.State != Review {
		t.Errorf("Again with no relearning steps: state = %v, want Review", c.State)
	}
}

func TestHigherStabilityYieldsLongerInterval(t *testing.T) {
	e := newTestEngine(t, Config{})
	if e.nextInterval(1) >= e.nextInterval(30) {
		t.Errorf("interval(S=1) = %d !< interval(S=30) = %d",
			e.nextInterval(1), e.nextInterval(30))
	}
	if got := e.nextInterval(1e9); got != e.maximumInterval {
		t.Errorf("huge stability interval = %d, want cap %d", got, e.maximumInterval)
	}
}

func TestRetrievabilityDecays(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := e.Retrievability(newCard(now), now); got != 0 {
		t.Errorf("unreviewed card retrievability = %v, want 0", got)
	}

	c := e.ReviewCard(newCard(now), Good, now)
	r1 := e.Retrievability(c, now.Add(24*time.Hour))
	r2 := e.Retrievability(c, now.Add(10*24*time.Hour))
	if !(r1 > r2) {
		t.Errorf("retrievability did not decay: day1=%v day10=%v", r1, r2)
	}
	if r1 <= 0 || r1 > 1 {
		t.Errorf("retrievability %v outside (0, 1]", r1)
	}
}

func TestReviewCardDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	step := 0
	in := Card{State: Learning, Step: &step, Due: now}
	_ = e.ReviewCard(in, Good, now)

	if in.State != Learning || in.Stability != nil || in.LastReview != nil {
		t.Error("input card was mutated")
	}
	if step != 0 {
		t.Errorf("input step mutated to %d", step)
	}
}

func TestDifficultyStaysClamped(t *testing.T) {
	e := newTestEngine(t, Config{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := e.ReviewCard(newCard(now), Again, now)
	for i := 0; i < 50; i++ {
		now = c.Due.Add(48 * time.Hour)
		c = e.ReviewCard(c, Again, now)
		if *c.Difficulty < 1 || *c.Difficulty > 10 {
			t.Fatalf("difficulty %v escaped [1, 10] after %d lapses", *c.Difficulty, i+2)
		}
	}
}
