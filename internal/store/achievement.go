package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// achievementRepo implements AchievementRepo.
type achievementRepo struct {
	q querier
}

func (r *achievementRepo) Unlock(ctx context.Context, userID, code string, at time.Time) (bool, error) {
	ins := r.q.builder().Insert(userAchievementsTable.Name).
		Columns("id", "user_id", "code", "unlocked_at").
		Values(uuid.NewString(), userID, code, at.UTC()).
		OnConflict(entsql.ConflictColumns("user_id", "code"), entsql.DoNothing())

	res, err := r.q.exec(ctx, ins)
	if err != nil {
		return false, fmt.Errorf("unlock %q for %q: %w", code, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock %q for %q: rows affected: %w", code, userID, err)
	}
	return n > 0, nil
}

func (r *achievementRepo) Unlocked(ctx context.Context, userID string) ([]AchievementRecord, error) {
	b := r.q.builder()
	sel := b.Select("code", "unlocked_at").
		From(b.Table(userAchievementsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Asc("unlocked_at"), entsql.Asc("code"))

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query achievements of %q: %w", userID, err)
	}
	defer rows.Close()

	var records []AchievementRecord
	for rows.Next() {
		var rec AchievementRecord
		if err := rows.Scan(&rec.Code, &rec.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *achievementRepo) DeleteUser(ctx context.Context, userID string) error {
	del := r.q.builder().Delete(userAchievementsTable.Name).
		Where(entsql.EQ("user_id", userID))
	if _, err := r.q.exec(ctx, del); err != nil {
		return fmt.Errorf("delete achievements of %q: %w", userID, err)
	}
	return nil
}
