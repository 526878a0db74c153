package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// preferencesRepo implements PreferencesRepo.
type preferencesRepo struct {
	q querier
}

func (r *preferencesRepo) Get(ctx context.Context, userID string) (*Preferences, error) {
	b := r.q.builder()
	sel := b.Select("subjects", "daily_minutes").
		From(b.Table(learningPreferencesTable.Name)).
		Where(entsql.EQ("user_id", userID))

	var (
		p        = Preferences{UserID: userID}
		subjects string
	)
	if err := r.q.queryRow(ctx, sel).Scan(&subjects, &p.DailyMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query preferences of %q: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(subjects), &p.SubjectIDs); err != nil {
		return nil, fmt.Errorf("unmarshal subjects of %q: %w", userID, err)
	}
	return &p, nil
}

func (r *preferencesRepo) Put(ctx context.Context, p Preferences) error {
	ids := p.SubjectIDs
	if ids == nil {
		ids = []string{}
	}
	subjects, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal subjects: %w", err)
	}

	ins := r.q.builder().Insert(learningPreferencesTable.Name).
		Columns("user_id", "subjects", "daily_minutes", "updated_at").
		Values(p.UserID, string(subjects), p.DailyMinutes, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues())
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("save preferences of %q: %w", p.UserID, err)
	}
	return nil
}
