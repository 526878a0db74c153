package learn

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/aprende/internal/achievements"
	"github.com/abhisek/aprende/internal/progress"
	"github.com/abhisek/aprende/internal/quiz"
	"github.com/abhisek/aprende/internal/store"
)

// openTestStore opens a store on a fresh shared in-memory database and a
// second raw connection to it for row counts.
func openTestStore(t *testing.T) (*store.Store, *sql.DB) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return s, db
}

// seed creates subjects math and bio, a three-question math lesson
// "fractions", a question-less bio lesson "cells" and n extra math lessons.
func seed(t *testing.T, st *store.Store, extra int) {
	t.Helper()
	ctx := context.Background()
	repo := st.LessonRepo()

	require.NoError(t, repo.UpsertSubject(ctx, store.Subject{ID: "math", Name: "Mathematics"}))
	require.NoError(t, repo.UpsertSubject(ctx, store.Subject{ID: "bio", Name: "Biology"}))
	require.NoError(t, repo.UpsertLesson(ctx, store.Lesson{
		ID: "fractions", SubjectID: "math", Title: "Fractions", DurationMinutes: 15, OrderIndex: 1,
	}))
	require.NoError(t, repo.UpsertLesson(ctx, store.Lesson{
		ID: "cells", SubjectID: "bio", Title: "Cells", DurationMinutes: 10, OrderIndex: 2,
	}))
	require.NoError(t, repo.ReplaceQuestions(ctx, "fractions", []quiz.Question{
		{ID: "q1", Prompt: "1/2 + 1/2?", Options: []string{"1", "2"}, Correct: 0},
		{ID: "q2", Prompt: "1/4 + 1/4?", Options: []string{"1/2", "1/8", "2/8"}, Correct: 0},
		{ID: "q3", Prompt: "2/3 of 3?", Options: []string{"1", "2"}, Correct: 1},
	}))
	for i := range extra {
		require.NoError(t, repo.UpsertLesson(ctx, store.Lesson{
			ID: fmt.Sprintf("extra-%02d", i), SubjectID: "math", Title: "Extra", OrderIndex: 10 + i,
		}))
	}
}

func newTestService(t *testing.T, extra int) (*Service, *store.Store, *sql.DB) {
	t.Helper()
	st, db := openTestStore(t)
	seed(t, st, extra)
	svc := NewService(st, Options{})
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc, st, db
}

// answer plays the attempt to completion choosing picks[i] for question i.
func answer(t *testing.T, svc *Service, a *Attempt, picks ...int) {
	t.Helper()
	ctx := context.Background()
	for _, p := range picks {
		require.True(t, a.Quiz.SelectOption(p))
		_, ok := svc.Confirm(ctx, a)
		require.True(t, ok)
		require.True(t, a.Quiz.Advance())
	}
	require.True(t, a.Quiz.Complete())
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestOpen(t *testing.T) {
	svc, _, db := newTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Fractions", a.Lesson.Title)
	assert.Equal(t, 3, a.Quiz.Total())
	assert.Equal(t, quiz.StateAwaitingSelection, a.Quiz.State())
	assert.Nil(t, a.Previous)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM session_events WHERE action = 'start'"))

	answer(t, svc, a, 0, 0, 0)
	_, err = svc.Complete(ctx, a, svc.Today())
	require.NoError(t, err)

	again, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)
	require.NotNil(t, again.Previous)
	assert.True(t, again.Previous.Completed)
	assert.Equal(t, 67, again.Previous.Score)

	_, err = svc.Open(ctx, "ana", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestConfirmRecordsAnswers(t *testing.T) {
	svc, _, db := newTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)

	// Nothing selected yet.
	_, ok := svc.Confirm(ctx, a)
	assert.False(t, ok)

	require.True(t, a.Quiz.SelectOption(1))
	rec, ok := svc.Confirm(ctx, a)
	require.True(t, ok)
	assert.Equal(t, quiz.AnswerRecord{QuestionIndex: 0, Selected: 1, Correct: false}, rec)

	// Already confirmed.
	_, ok = svc.Confirm(ctx, a)
	assert.False(t, ok)

	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM answer_events WHERE question_id = 'q1' AND correct = 0"))
}

func TestConfirmKeepsAnswerWhenLogFails(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	st, _ := openTestStore(t)
	seed(t, st, 0)
	svc := NewService(st, Options{Logger: zap.New(core)})
	ctx := context.Background()

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)
	require.True(t, a.Quiz.SelectOption(0))
	require.NoError(t, st.Close())

	rec, ok := svc.Confirm(ctx, a)
	require.True(t, ok)
	assert.True(t, rec.Correct)
	assert.Equal(t, quiz.StateAnswerConfirmed, a.Quiz.State())
	assert.Len(t, a.Quiz.Answers(), 1)

	entries := logs.FilterMessage("answer event not saved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID, entries[0].ContextMap()["session_id"])
}

func TestCompleteFirstLesson(t *testing.T) {
	svc, st, db := newTestService(t, 0)
	ctx := context.Background()
	today := progress.MustParseDate("2024-03-10")

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, a, today)
	assert.ErrorIs(t, err, ErrNotComplete)

	answer(t, svc, a, 0, 1, 1) // 2 of 3 correct

	out, err := svc.Complete(ctx, a, today)
	require.NoError(t, err)
	assert.Equal(t, quiz.Result{Total: 3, Correct: 2, Score: 67}, out.Result)
	assert.Equal(t, 13, out.PointsAwarded)
	assert.Nil(t, out.Previous)
	assert.True(t, out.StreakExtended())
	assert.False(t, out.LeveledUp())
	assert.Equal(t, progress.Snapshot{
		LessonsCompleted: 1,
		CurrentStreak:    1,
		LongestStreak:    1,
		TotalPoints:      13,
		TotalMinutes:     15,
		Level:            1,
		LastActivity:     today,
	}, out.Stats)
	require.NotEmpty(t, out.Awards)
	assert.Equal(t, "first_lesson", out.Awards[0].Code)

	_, err = svc.Complete(ctx, a, today)
	assert.ErrorIs(t, err, ErrAlreadyRecorded)

	snap, err := st.StatsRepo().Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, out.Stats, *snap)

	p, err := st.ProgressRepo().Get(ctx, "ana", "fractions")
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.Equal(t, 67, p.Score)
	assert.Equal(t, 15, p.TimeSpentMinutes)

	history, err := svc.History(ctx, "ana", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Fractions", history[0].LessonTitle)
	assert.Equal(t, 67, history[0].Score)
	assert.Equal(t, 3, history[0].QuestionsServed)
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM answer_events"))
}

func TestCompleteStreakAcrossDays(t *testing.T) {
	svc, _, _ := newTestService(t, 0)
	ctx := context.Background()
	day := progress.MustParseDate("2024-03-10")

	run := func(today progress.Date) *Outcome {
		t.Helper()
		a, err := svc.Open(ctx, "ana", "fractions")
		require.NoError(t, err)
		answer(t, svc, a, 0, 0, 1)
		out, err := svc.Complete(ctx, a, today)
		require.NoError(t, err)
		return out
	}

	out := run(day)
	assert.Equal(t, 1, out.Stats.CurrentStreak)
	assert.Equal(t, 20, out.PointsAwarded)

	out = run(day) // same day
	assert.Equal(t, 1, out.Stats.CurrentStreak)
	assert.False(t, out.StreakExtended())
	assert.Equal(t, 2, out.Stats.LessonsCompleted)

	out = run(day.AddDays(1))
	assert.Equal(t, 2, out.Stats.CurrentStreak)
	assert.True(t, out.StreakExtended())

	out = run(day.AddDays(2))
	assert.Equal(t, 3, out.Stats.CurrentStreak)
	assert.Contains(t, codes(out.Awards), "streak_3")

	out = run(day.AddDays(5)) // gap
	assert.Equal(t, 1, out.Stats.CurrentStreak)
	assert.Equal(t, 3, out.Stats.LongestStreak)
	assert.Equal(t, 100, out.Stats.TotalPoints)
	assert.Equal(t, 2, out.Stats.Level)
	assert.True(t, out.LeveledUp())
	assert.Contains(t, codes(out.Awards), "points_100")
}

func TestCompleteEmptyLesson(t *testing.T) {
	svc, _, _ := newTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Open(ctx, "ana", "cells")
	require.NoError(t, err)
	require.True(t, a.Quiz.Complete(), "a lesson without questions starts complete")

	out, err := svc.Complete(ctx, a, progress.MustParseDate("2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, quiz.Result{}, out.Result)
	assert.Zero(t, out.PointsAwarded)
	assert.Equal(t, 1, out.Stats.LessonsCompleted)
	assert.Equal(t, 10, out.Stats.TotalMinutes)
}

func TestToday(t *testing.T) {
	st, _ := openTestStore(t)
	loc := time.FixedZone("UTC+03:00", 3*3600)
	svc := NewService(st, Options{Location: loc})
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC) }

	assert.Equal(t, progress.MustParseDate("2024-03-11"), svc.Today())
}

func TestRecommended(t *testing.T) {
	svc, _, _ := newTestService(t, 12)
	ctx := context.Background()

	items, err := svc.Recommended(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, items, RecommendedLimit)
	assert.Equal(t, "fractions", items[0].ID)
	assert.Equal(t, "cells", items[1].ID)
	assert.False(t, items[0].Completed)

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)
	answer(t, svc, a, 0, 0, 0)
	_, err = svc.Complete(ctx, a, svc.Today())
	require.NoError(t, err)

	require.NoError(t, svc.SetPreferences(ctx, store.Preferences{UserID: "ana", SubjectIDs: []string{"bio"}}))
	items, err = svc.Recommended(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "cells", items[0].ID)

	require.NoError(t, svc.SetPreferences(ctx, store.Preferences{UserID: "ana", SubjectIDs: []string{"math"}}))
	items, err = svc.Recommended(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, items, RecommendedLimit)
	assert.True(t, items[0].Completed)
	assert.False(t, items[1].Completed)
}

func TestSetPreferencesUnknownSubject(t *testing.T) {
	svc, _, _ := newTestService(t, 0)
	err := svc.SetPreferences(context.Background(), store.Preferences{UserID: "ana", SubjectIDs: []string{"art"}})
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestDashboard(t *testing.T) {
	svc, st, _ := newTestService(t, 0)
	ctx := context.Background()

	now := svc.now()
	for _, c := range []store.Challenge{
		{ID: "yesterday", Title: "Expired", ActiveUntil: now.Add(-time.Minute)},
		{ID: "weekly", Title: "Weekly", Type: store.ChallengeWeekly, ActiveUntil: now.Add(time.Hour)},
		{ID: "b", Title: "Ends later", Points: 30, ActiveUntil: now.Add(5 * time.Hour)},
		{ID: "a", Title: "Ends first", Points: 50, ActiveUntil: now.Add(time.Hour)},
		{ID: "c", Title: "Third", ActiveUntil: now.Add(6 * time.Hour)},
		{ID: "d", Title: "Over the cap", ActiveUntil: now.Add(7 * time.Hour)},
	} {
		require.NoError(t, st.ChallengeRepo().Upsert(ctx, c))
	}

	d, err := svc.Dashboard(ctx, "ana", nil)
	require.NoError(t, err)
	assert.Equal(t, progress.Snapshot{Level: 1}, d.Stats, "zero stats before the first lesson")
	assert.Empty(t, d.Achievements)
	assert.Equal(t, len(achievements.DefaultCatalog()), d.Available)
	require.Len(t, d.Challenges, ChallengeLimit)
	assert.Equal(t, "a", d.Challenges[0].ID)
	assert.Equal(t, 50, d.Challenges[0].Points)
	assert.Equal(t, "b", d.Challenges[1].ID)
	assert.Equal(t, "c", d.Challenges[2].ID)
	assert.Len(t, d.Lessons, 2)
	assert.Equal(t, 3, d.NextStreak)
	assert.Equal(t, motivationalPhrases[0], d.Phrase)

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)
	answer(t, svc, a, 0, 0, 1)
	_, err = svc.Complete(ctx, a, svc.Today())
	require.NoError(t, err)

	d, err = svc.Dashboard(ctx, "ana", rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Stats.LessonsCompleted)
	assert.Equal(t, 20, d.Stats.TotalPoints)
	require.Len(t, d.Achievements, 1)
	assert.Equal(t, "first_lesson", d.Achievements[0].Code)
	assert.Contains(t, motivationalPhrases, d.Phrase)
}

func TestReset(t *testing.T) {
	svc, st, db := newTestService(t, 0)
	ctx := context.Background()

	a, err := svc.Open(ctx, "ana", "fractions")
	require.NoError(t, err)
	answer(t, svc, a, 0, 0, 1)
	_, err = svc.Complete(ctx, a, svc.Today())
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "ana"))

	snap, err := st.StatsRepo().Get(ctx, "ana")
	require.NoError(t, err)
	assert.Nil(t, snap)
	history, err := svc.History(ctx, "ana", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
	d, err := svc.Dashboard(ctx, "ana", nil)
	require.NoError(t, err)
	assert.Empty(t, d.Achievements)
	assert.Equal(t, 0, count(t, db, "SELECT COUNT(*) FROM user_progress"))

	// The catalog survives.
	lessons, err := st.LessonRepo().ListLessons(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
}

func codes(awards []achievements.Award) []string {
	out := make([]string, len(awards))
	for i, a := range awards {
		out[i] = a.Code
	}
	return out
}
