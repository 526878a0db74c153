package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/aprende/internal/progress"
)

// statsRepo implements StatsRepo with one user_stats row per user.
type statsRepo struct {
	q querier
}

func (r *statsRepo) Get(ctx context.Context, userID string) (*progress.Snapshot, error) {
	b := r.q.builder()
	sel := b.Select("lessons_completed", "current_streak", "longest_streak", "total_points", "total_minutes", "level", "last_activity").
		From(b.Table(userStatsTable.Name)).
		Where(entsql.EQ("user_id", userID))

	var (
		snap progress.Snapshot
		last string
	)
	err := r.q.queryRow(ctx, sel).Scan(
		&snap.LessonsCompleted,
		&snap.CurrentStreak,
		&snap.LongestStreak,
		&snap.TotalPoints,
		&snap.TotalMinutes,
		&snap.Level,
		&last,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query stats of %q: %w", userID, err)
	}

	snap.LastActivity, err = progress.ParseDate(last)
	if err != nil {
		return nil, fmt.Errorf("stats of %q: %w", userID, err)
	}
	return &snap, nil
}

func (r *statsRepo) Put(ctx context.Context, userID string, snap progress.Snapshot) error {
	ins := r.q.builder().Insert(userStatsTable.Name).
		Columns("user_id", "lessons_completed", "current_streak", "longest_streak", "total_points", "total_minutes", "level", "last_activity", "updated_at").
		Values(
			userID,
			snap.LessonsCompleted,
			snap.CurrentStreak,
			snap.LongestStreak,
			snap.TotalPoints,
			snap.TotalMinutes,
			snap.Level,
			snap.LastActivity.String(),
			time.Now().UTC(),
		).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues())
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("save stats of %q: %w", userID, err)
	}
	return nil
}

func (r *statsRepo) Delete(ctx context.Context, userID string) error {
	del := r.q.builder().Delete(userStatsTable.Name).
		Where(entsql.EQ("user_id", userID))
	if _, err := r.q.exec(ctx, del); err != nil {
		return fmt.Errorf("delete stats of %q: %w", userID, err)
	}
	return nil
}
