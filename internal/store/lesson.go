package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/aprende/internal/quiz"
)

// lessonRepo implements LessonRepo with ent's SQL builders.
type lessonRepo struct {
	q querier
}

func (r *lessonRepo) UpsertSubject(ctx context.Context, s Subject) error {
	ins := r.q.builder().Insert(subjectsTable.Name).
		Columns("id", "name", "description", "icon", "color").
		Values(s.ID, s.Name, s.Description, s.Icon, s.Color).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert subject %q: %w", s.ID, err)
	}
	return nil
}

func (r *lessonRepo) Subjects(ctx context.Context) ([]Subject, error) {
	b := r.q.builder()
	sel := b.Select("id", "name", "description", "icon", "color").
		From(b.Table(subjectsTable.Name)).
		OrderBy(entsql.Asc("name"))

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []Subject
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.Color); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *lessonRepo) UpsertLesson(ctx context.Context, l Lesson) error {
	ins := r.q.builder().Insert(lessonsTable.Name).
		Columns("id", "subject_id", "title", "content", "duration_minutes", "difficulty", "video_url", "order_index").
		Values(l.ID, l.SubjectID, l.Title, l.Content, l.DurationMinutes, l.Difficulty, l.VideoURL, l.OrderIndex).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert lesson %q: %w", l.ID, err)
	}
	return nil
}

var lessonColumns = []string{"id", "subject_id", "title", "content", "duration_minutes", "difficulty", "video_url", "order_index"}

func scanLesson(sc interface{ Scan(...any) error }) (Lesson, error) {
	var l Lesson
	err := sc.Scan(&l.ID, &l.SubjectID, &l.Title, &l.Content, &l.DurationMinutes, &l.Difficulty, &l.VideoURL, &l.OrderIndex)
	return l, err
}

func (r *lessonRepo) Lesson(ctx context.Context, id string) (*Lesson, error) {
	b := r.q.builder()
	sel := b.Select(lessonColumns...).
		From(b.Table(lessonsTable.Name)).
		Where(entsql.EQ("id", id))

	l, err := scanLesson(r.q.queryRow(ctx, sel))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query lesson %q: %w", id, err)
	}
	return &l, nil
}

func (r *lessonRepo) ListLessons(ctx context.Context, limit int) ([]Lesson, error) {
	b := r.q.builder()
	sel := b.Select(lessonColumns...).
		From(b.Table(lessonsTable.Name)).
		OrderBy(entsql.Asc("order_index"), entsql.Asc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *lessonRepo) ReplaceQuestions(ctx context.Context, lessonID string, questions []quiz.Question) error {
	del := r.q.builder().Delete(quizQuestionsTable.Name).
		Where(entsql.EQ("lesson_id", lessonID))
	if _, err := r.q.exec(ctx, del); err != nil {
		return fmt.Errorf("delete questions of %q: %w", lessonID, err)
	}
	if len(questions) == 0 {
		return nil
	}

	ins := r.q.builder().Insert(quizQuestionsTable.Name).
		Columns("id", "lesson_id", "position", "prompt", "options", "correct_option", "explanation")
	for i, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options of question %d: %w", i, err)
		}
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		ins = ins.Values(id, lessonID, i, q.Prompt, string(opts), q.Correct, q.Explanation)
	}
	if _, err := r.q.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert questions of %q: %w", lessonID, err)
	}
	return nil
}

func (r *lessonRepo) Questions(ctx context.Context, lessonID string) ([]quiz.Question, error) {
	b := r.q.builder()
	sel := b.Select("id", "prompt", "options", "correct_option", "explanation").
		From(b.Table(quizQuestionsTable.Name)).
		Where(entsql.EQ("lesson_id", lessonID)).
		OrderBy(entsql.Asc("position"))

	rows, err := r.q.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query questions of %q: %w", lessonID, err)
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		var (
			q    quiz.Question
			opts string
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &opts, &q.Correct, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of question %q: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
