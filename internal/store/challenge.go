package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type challengeRepo struct {
	q querier
}

func (r *challengeRepo) Upsert(ctx context.Context, c Challenge) error {
	if c.Type == "" {
		c.Type = ChallengeDaily
	}
	ins := r.q.builder().Insert(dailyChallengesTable.Name).
		Columns("id", "title", "description", "challenge_type", "points", "active_from", "active_until").
		Values(c.ID, c.Title, c.Description, c.Type, c.Points, c.ActiveFrom.UTC(), c.ActiveUntil.UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert challenge %q: %w", c.ID, err)
	}
	return nil
}

func (r *challengeRepo) Active(ctx context.Context, now time.Time, limit int) ([]Challenge, error) {
	b := r.q.builder()
	sel := b.Select("id", "title", "description", "challenge_type", "points", "active_from", "active_until").
		From(b.Table(dailyChallengesTable.Name)).
		Where(entsql.And(
			entsql.EQ("challenge_type", ChallengeDaily),
			entsql.GTE("active_until", now.UTC()),
		)).
		OrderBy(entsql.Asc("active_until"), entsql.Asc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query active challenges: %w", err)
	}
	defer rows.Close()

	var challenges []Challenge
	for rows.Next() {
		var c Challenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Type, &c.Points, &c.ActiveFrom, &c.ActiveUntil); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	return challenges, rows.Err()
}
