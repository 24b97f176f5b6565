package scheduling

import (
	"reflect"
	"testing"
	"time"

	"github.com/easysks/easysks/internal/apperr"
	"github.com/easysks/easysks/internal/domain"
	"github.com/easysks/easysks/internal/fsrs"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(fsrs.Config{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestReviewCardRejectsInvalidRating(t *testing.T) {
	svc := newTestService(t)
	info := domain.NewSchedulingInfo("u1", "c1", time.Now())

	for _, bad := range []int{0, 5, 99, -1} {
		_, _, err := svc.ReviewCard(info, domain.Rating(bad), time.Now(), nil)
		if err == nil {
			t.Errorf("rating %d: expected error", bad)
			continue
		}
		if !apperr.IsInvalidInput(err) {
			t.Errorf("rating %d: error not classified invalid-input: %v", bad, err)
		}
	}
}

func TestSuspendedCardIsNeverAdvanced(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	last := now.Add(-48 * time.Hour)
	info := domain.SchedulingInfo{
		UserID:     "u1",
		CardID:     "c1",
		State:      domain.StateSuspended,
		Stability:  12.5,
		Difficulty: 4.2,
		Reps:       7,
		Lapses:     2,
		Due:        now.Add(-time.Hour),
		LastReview: &last,
	}

	for _, rating := range []domain.Rating{
		domain.RatingAgain, domain.RatingHard, domain.RatingGood, domain.RatingEasy,
	} {
		next, log, err := svc.ReviewCard(info, rating, now, nil)
		if err != nil {
			t.Fatalf("%v: %v", rating, err)
		}
		if !reflect.DeepEqual(next, info) {
			t.Errorf("%v: suspended state changed: %+v", rating, next)
		}
		if log.Rating != rating || log.CardID != "c1" {
			t.Errorf("%v: log = %+v", rating, log)
		}
	}
}

func TestFirstReviewLeavesNewState(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	info := domain.NewSchedulingInfo("u1", "c1", now.Add(-time.Hour))

	next, log, err := svc.ReviewCard(info, domain.RatingGood, now, nil)
	if err != nil {
		t.Fatal(err)
	}
	if next.State == domain.StateNew {
		t.Error("card still NEW after first review")
	}
	if next.Reps != 1 {
		t.Errorf("reps = %d, want 1", next.Reps)
	}
	if next.Lapses != 0 {
		t.Errorf("lapses = %d, want 0", next.Lapses)
	}
	if next.Due.Before(now) {
		t.Errorf("due %v before review time %v", next.Due, now)
	}
	if next.LastReview == nil || !next.LastReview.Equal(now) {
		t.Errorf("last review = %v, want %v", next.LastReview, now)
	}
	if next.Stability <= 0 {
		t.Errorf("stability = %v, want > 0", next.Stability)
	}
	if log.ReviewedAt != now {
		t.Errorf("log reviewed at %v, want %v", log.ReviewedAt, now)
	}
}

func TestTimestampsNormalizedToUTC(t *testing.T) {
	svc := newTestService(t)
	berlin := time.FixedZone("CEST", 2*60*60)
	localNow := time.Date(2026, 4, 1, 11, 0, 0, 0, berlin)

	info := domain.NewSchedulingInfo("u1", "c1", localNow.Add(-time.Hour))
	next, log, err := svc.ReviewCard(info, domain.RatingGood, localNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := localNow.UTC()
	if !next.LastReview.Equal(want) || next.LastReview.Location() != time.UTC {
		t.Errorf("last review = %v, want UTC %v", next.LastReview, want)
	}
	if log.ReviewedAt.Location() != time.UTC {
		t.Errorf("log timestamp not UTC: %v", log.ReviewedAt)
	}
}

func TestLapseCountedOnAgainFromReview(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	info := domain.NewSchedulingInfo("u1", "c1", now)

	// Easy graduates to REVIEW in one step.
	next, _, err := svc.ReviewCard(info, domain.RatingEasy, now, nil)
	if err != nil {
		t.Fatal(err)
	}
	if next.State != domain.StateReview {
		t.Fatalf("state = %v, want REVIEW", next.State)
	}

	// Again out of REVIEW is a lapse.
	lapseTime := next.Due.Add(24 * time.Hour)
	lapsed, _, err := svc.ReviewCard(next, domain.RatingAgain, lapseTime, nil)
	if err != nil {
		t.Fatal(err)
	}
	if lapsed.Lapses != 1 {
		t.Errorf("lapses = %d, want 1", lapsed.Lapses)
	}
	if lapsed.State != domain.StateRelearning {
		t.Errorf("state = %v, want RELEARNING", lapsed.State)
	}
	if lapsed.ElapsedDays < 1 {
		t.Errorf("elapsed days = %d, want >= 1", lapsed.ElapsedDays)
	}

	// Again while already RELEARNING is not another lapse.
	again, _, err := svc.ReviewCard(lapsed, domain.RatingAgain, lapseTime.Add(time.Hour), nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.Lapses != 1 {
		t.Errorf("lapses = %d after relearning Again, want still 1", again.Lapses)
	}
}

func TestRepsAccumulateAcrossReviews(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	info := domain.NewSchedulingInfo("u1", "c1", now)
	for i := 1; i <= 5; i++ {
		var err error
		info, _, err = svc.ReviewCard(info, domain.RatingGood, now, nil)
		if err != nil {
			t.Fatal(err)
		}
		if info.Reps != i {
			t.Fatalf("after review %d: reps = %d", i, info.Reps)
		}
		now = info.Due.Add(time.Minute)
	}
}

func TestScheduledDaysMatchDue(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	info := domain.NewSchedulingInfo("u1", "c1", now)
	next, _, err := svc.ReviewCard(info, domain.RatingEasy, now, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := int(next.Due.Sub(now).Hours() / 24)
	if next.ScheduledDays != want {
		t.Errorf("scheduled days = %d, want %d", next.ScheduledDays, want)
	}
}

func TestRetrievabilityZeroForNewCard(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()
	info := domain.NewSchedulingInfo("u1", "c1", now)
	if got := svc.Retrievability(info, now); got != 0 {
		t.Errorf("retrievability of NEW card = %v, want 0", got)
	}
}
