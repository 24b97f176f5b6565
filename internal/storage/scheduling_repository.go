package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/easysks/easysks/internal/domain"
)

// SchedulingRepository implements study.SchedulingStore.
//
// The queue ordering contract lives in schedulingOrder: due first, then
// never-reviewed rows before reviewed ones, then card id. With the
// fixed-width timestamp encoding the TEXT comparisons are chronological.
type SchedulingRepository struct {
	ext sqlx.ExtContext
}

type schedulingRow struct {
	UserID        string  `db:"user_id"`
	CardID        string  `db:"card_id"`
	State         int     `db:"state"`
	Stability     float64 `db:"stability"`
	Difficulty    float64 `db:"difficulty"`
	ElapsedDays   int     `db:"elapsed_days"`
	ScheduledDays int     `db:"scheduled_days"`
	Reps          int     `db:"reps"`
	Lapses        int     `db:"lapses"`
	Due           string  `db:"due"`
	LastReview    *string `db:"last_review"`
	LearningStep  *int    `db:"learning_step"`
}

const (
	schedulingColumns = `user_id, card_id, state, stability, difficulty,
		elapsed_days, scheduled_days, reps, lapses, due, last_review, learning_step`
	schedulingOrder = "ORDER BY due ASC, last_review ASC NULLS FIRST, card_id ASC"
)

func (r *SchedulingRepository) Get(ctx context.Context, userID, cardID string) (*domain.SchedulingInfo, error) {
	var row schedulingRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		"SELECT "+schedulingColumns+" FROM card_scheduling_info WHERE user_id = ? AND card_id = ?",
		userID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduling info for card %s: %w", cardID, err)
	}
	info, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *SchedulingRepository) ListDue(ctx context.Context, userID string, before time.Time) ([]domain.SchedulingInfo, error) {
	var rows []schedulingRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		"SELECT "+schedulingColumns+" FROM card_scheduling_info WHERE user_id = ? AND due <= ? "+schedulingOrder,
		userID, timeText(before))
	if err != nil {
		return nil, fmt.Errorf("list due scheduling info: %w", err)
	}
	return infosFromRows(rows)
}

func (r *SchedulingRepository) ListAll(ctx context.Context, userID string) ([]domain.SchedulingInfo, error) {
	var rows []schedulingRow
	err := sqlx.SelectContext(ctx, r.ext, &rows,
		"SELECT "+schedulingColumns+" FROM card_scheduling_info WHERE user_id = ? "+schedulingOrder,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list scheduling info: %w", err)
	}
	return infosFromRows(rows)
}

func (r *SchedulingRepository) Save(ctx context.Context, info domain.SchedulingInfo) error {
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO card_scheduling_info (user_id, card_id, state, stability, difficulty,
			elapsed_days, scheduled_days, reps, lapses, due, last_review, learning_step)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			state = excluded.state,
			stability = excluded.stability,
			difficulty = excluded.difficulty,
			elapsed_days = excluded.elapsed_days,
			scheduled_days = excluded.scheduled_days,
			reps = excluded.reps,
			lapses = excluded.lapses,
			due = excluded.due,
			last_review = excluded.last_review,
			learning_step = excluded.learning_step`,
		info.UserID, info.CardID, int(info.State), info.Stability, info.Difficulty,
		info.ElapsedDays, info.ScheduledDays, info.Reps, info.Lapses,
		timeText(info.Due), nullableTimeText(info.LastReview), info.LearningStep)
	if err != nil {
		return fmt.Errorf("save scheduling info for card %s: %w", info.CardID, err)
	}
	return nil
}

func (row schedulingRow) toDomain() (domain.SchedulingInfo, error) {
	due, err := parseTimeText(row.Due)
	if err != nil {
		return domain.SchedulingInfo{}, fmt.Errorf("scheduling row %s/%s: %w", row.UserID, row.CardID, err)
	}
	lastReview, err := parseNullableTimeText(row.LastReview)
	if err != nil {
		return domain.SchedulingInfo{}, fmt.Errorf("scheduling row %s/%s: %w", row.UserID, row.CardID, err)
	}
	return domain.SchedulingInfo{
		UserID:        row.UserID,
		CardID:        row.CardID,
		State:         domain.CardState(row.State),
		Stability:     row.Stability,
		Difficulty:    row.Difficulty,
		ElapsedDays:   row.ElapsedDays,
		ScheduledDays: row.ScheduledDays,
		Reps:          row.Reps,
		Lapses:        row.Lapses,
		Due:           due,
		LastReview:    lastReview,
		LearningStep:  row.LearningStep,
	}, nil
}

func infosFromRows(rows []schedulingRow) ([]domain.SchedulingInfo, error) {
	infos := make([]domain.SchedulingInfo, 0, len(rows))
	for _, row := range rows {
		info, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
