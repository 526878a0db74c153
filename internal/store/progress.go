package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// progressRepo implements ProgressRepo.
type progressRepo struct {
	q querier
}

func (r *progressRepo) Upsert(ctx context.Context, p LessonProgress) error {
	ins := r.q.builder().Insert(userProgressTable.Name).
		Columns("id", "user_id", "lesson_id", "completed", "score", "time_spent_minutes", "completed_at").
		Values(uuid.NewString(), p.UserID, p.LessonID, p.Completed, p.Score, p.TimeSpentMinutes, p.CompletedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("user_id", "lesson_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("completed")
				u.SetExcluded("score")
				u.SetExcluded("time_spent_minutes")
				u.SetExcluded("completed_at")
			}),
		)
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert progress %q/%q: %w", p.UserID, p.LessonID, err)
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, userID, lessonID string) (*LessonProgress, error) {
	b := r.q.builder()
	sel := b.Select("completed", "score", "time_spent_minutes", "completed_at").
		From(b.Table(userProgressTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("lesson_id", lessonID),
		))

	p := LessonProgress{UserID: userID, LessonID: lessonID}
	err := r.q.queryRow(ctx, sel).Scan(&p.Completed, &p.Score, &p.TimeSpentMinutes, &p.CompletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress %q/%q: %w", userID, lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("query progress %q/%q: %w", userID, lessonID, err)
	}
	return &p, nil
}

func (r *progressRepo) CompletedLessons(ctx context.Context, userID string) (map[string]bool, error) {
	b := r.q.builder()
	sel := b.Select("lesson_id").
		From(b.Table(userProgressTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("completed", true),
		))

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query completed lessons of %q: %w", userID, err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lesson id: %w", err)
		}
		done[id] = true
	}
	return done, rows.Err()
}

func (r *progressRepo) DeleteUser(ctx context.Context, userID string) error {
	del := r.q.builder().Delete(userProgressTable.Name).
		Where(entsql.EQ("user_id", userID))
	if _, err := r.q.exec(ctx, del); err != nil {
		return fmt.Errorf("delete progress of %q: %w", userID, err)
	}
	return nil
}
