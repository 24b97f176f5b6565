package study

import (
	"context"
	"fmt"
	"time"

	"github.com/easysks/easysks/internal/domain"
)

// Dashboard aggregates the KPI values shown on the user's dashboard. All
// values are derived on the fly; nothing is stored. Building the due queue
// here introduces new cards exactly like a study request would.
func (s *Service) Dashboard(ctx context.Context, userID string) (*domain.DashboardSummary, error) {
	now := s.now().UTC()

	var summary *domain.DashboardSummary
	err := s.uow.Run(ctx, func(ctx context.Context, st Stores) error {
		due, err := s.dueTier(ctx, st, userID, nil, now)
		if err != nil {
			return err
		}
		introduced, err := s.introduceNewCards(ctx, st, userID, nil, s.queueCap-len(due), now)
		if err != nil {
			return err
		}
		due = append(due, introduced...)

		// The practice pool adds the scheduled-but-not-due cards.
		available := len(due)
		if available < s.queueCap {
			seen := make(map[string]bool, len(due))
			for _, sc := range due {
				seen[sc.Card.CardID] = true
			}
			all, err := st.Scheduling.ListAll(ctx, userID)
			if err != nil {
				return fmt.Errorf("list scheduled cards: %w", err)
			}
			for _, info := range all {
				if available >= s.queueCap {
					break
				}
				if seen[info.CardID] {
					continue
				}
				if _, ok, err := s.resolveStudyCard(ctx, st, info, nil); err != nil {
					return err
				} else if ok {
					available++
				}
			}
		}

		logs, err := st.ReviewLogs.List(ctx, userID, "")
		if err != nil {
			return fmt.Errorf("list review logs: %w", err)
		}

		dueByTopic := make(map[domain.Topic]int, len(domain.AllTopics()))
		for _, topic := range domain.AllTopics() {
			dueByTopic[topic] = 0
		}
		for _, sc := range due {
			// Count each card under its first matching topic only.
			for _, topic := range domain.AllTopics() {
				if sc.Card.HasTag(string(topic)) {
					dueByTopic[topic]++
					break
				}
			}
		}

		var recommended *domain.Topic
		maxDue := 0
		for _, topic := range domain.AllTopics() {
			if dueByTopic[topic] > maxDue {
				maxDue = dueByTopic[topic]
				t := topic
				recommended = &t
			}
		}

		summary = &domain.DashboardSummary{
			DueNow:           len(due),
			ReviewedToday:    countReviewedOn(logs, now),
			StreakDays:       streakDays(logs),
			DueByTopic:       dueByTopic,
			RecommendedTopic: recommended,
			AvailableCards:   available,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// countReviewedOn counts log entries whose timestamp falls on the same UTC
// calendar day as now.
func countReviewedOn(logs []domain.ReviewLog, now time.Time) int {
	today := now.UTC().Truncate(24 * time.Hour)
	count := 0
	for _, log := range logs {
		if log.ReviewedAt.UTC().Truncate(24*time.Hour).Equal(today) {
			count++
		}
	}
	return count
}

// streakDays counts consecutive UTC days with at least one review, walking
// backwards from the most recent activity day. A gap ends the streak.
func streakDays(logs []domain.ReviewLog) int {
	if len(logs) == 0 {
		return 0
	}

	days := make(map[time.Time]bool, len(logs))
	var latest time.Time
	for _, log := range logs {
		day := log.ReviewedAt.UTC().Truncate(24 * time.Hour)
		days[day] = true
		if day.After(latest) {
			latest = day
		}
	}

	streak := 0
	for cursor := latest; days[cursor]; cursor = cursor.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
