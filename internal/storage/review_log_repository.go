package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/easysks/easysks/internal/domain"
)

// ReviewLogRepository implements study.ReviewLogStore. The table is
// append-only; nothing updates or deletes rows.
type ReviewLogRepository struct {
	ext sqlx.ExtContext
}

type reviewLogRow struct {
	UserID           string `db:"user_id"`
	CardID           string `db:"card_id"`
	Rating           int    `db:"rating"`
	ReviewedAt       string `db:"reviewed_at"`
	ReviewDurationMS *int   `db:"review_duration_ms"`
}

func (r *ReviewLogRepository) Append(ctx context.Context, entry domain.ReviewLog) error {
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO review_logs (user_id, card_id, rating, reviewed_at, review_duration_ms)
		VALUES (?, ?, ?, ?, ?)`,
		entry.UserID, entry.CardID, int(entry.Rating),
		timeText(entry.ReviewedAt), entry.ReviewDurationMS)
	if err != nil {
		return fmt.Errorf("append review log for card %s: %w", entry.CardID, err)
	}
	return nil
}

func (r *ReviewLogRepository) List(ctx context.Context, userID, cardID string) ([]domain.ReviewLog, error) {
	query := `SELECT user_id, card_id, rating, reviewed_at, review_duration_ms
		FROM review_logs WHERE user_id = ?`
	args := []any{userID}
	if cardID != "" {
		query += " AND card_id = ?"
		args = append(args, cardID)
	}
	query += " ORDER BY reviewed_at ASC, id ASC"

	var rows []reviewLogRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list review logs: %w", err)
	}

	logs := make([]domain.ReviewLog, 0, len(rows))
	for _, row := range rows {
		reviewedAt, err := parseTimeText(row.ReviewedAt)
		if err != nil {
			return nil, fmt.Errorf("review log row for card %s: %w", row.CardID, err)
		}
		logs = append(logs, domain.ReviewLog{
			UserID:           row.UserID,
			CardID:           row.CardID,
			Rating:           domain.Rating(row.Rating),
			ReviewedAt:       reviewedAt,
			ReviewDurationMS: row.ReviewDurationMS,
		})
	}
	return logs, nil
}
