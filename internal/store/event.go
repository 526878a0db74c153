package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo. Events are append-only; the
// auto-increment id gives their insertion order within a table.
type eventRepo struct {
	q querier
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	ins := r.q.builder().Insert(sessionEventsTable.Name).
		Columns("timestamp", "session_id", "user_id", "lesson_id", "action", "questions_served", "correct_answers", "score").
		Values(
			time.Now().UTC(),
			data.SessionID,
			data.UserID,
			data.LessonID,
			data.Action,
			data.QuestionsServed,
			data.CorrectAnswers,
			data.Score,
		)
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	ins := r.q.builder().Insert(answerEventsTable.Name).
		Columns("timestamp", "session_id", "user_id", "lesson_id", "question_id", "question_index", "selected_option", "correct").
		Values(
			time.Now().UTC(),
			data.SessionID,
			data.UserID,
			data.LessonID,
			data.QuestionID,
			data.QuestionIndex,
			data.Selected,
			data.Correct,
		)
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, userID string, opts QueryOpts) ([]SessionSummaryRecord, error) {
	b := r.q.builder()
	preds := []*entsql.Predicate{
		entsql.EQ("user_id", userID),
		entsql.EQ("action", ActionEnd),
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}

	sel := b.Select("session_id", "lesson_id", "timestamp", "questions_served", "correct_answers", "score").
		From(b.Table(sessionEventsTable.Name)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var rec SessionSummaryRecord
		if err := rows.Scan(&rec.SessionID, &rec.LessonID, &rec.Timestamp, &rec.QuestionsServed, &rec.CorrectAnswers, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) DeleteUser(ctx context.Context, userID string) error {
	for _, t := range []string{sessionEventsTable.Name, answerEventsTable.Name} {
		del := r.q.builder().Delete(t).Where(entsql.EQ("user_id", userID))
		if _, err := r.q.exec(ctx, del); err != nil {
			return fmt.Errorf("delete %s of %q: %w", t, userID, err)
		}
	}
	return nil
}
