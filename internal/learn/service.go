// Package learn ties the quiz engine and the progress tracker to the store:
// it opens lessons as quiz attempts, records answers, and applies a
// finished attempt to the user's statistics.
package learn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/aprende/internal/achievements"
	"github.com/abhisek/aprende/internal/progress"
	"github.com/abhisek/aprende/internal/quiz"
	"github.com/abhisek/aprende/internal/store"
)

var (
	// ErrNotComplete is returned by Complete for an unfinished attempt.
	ErrNotComplete = errors.New("quiz not complete")

	// ErrAlreadyRecorded is returned by Complete when the attempt was
	// already applied to the statistics.
	ErrAlreadyRecorded = errors.New("attempt already recorded")

	// ErrUnknownSubject is returned by SetPreferences for a subject that
	// is not in the catalog.
	ErrUnknownSubject = errors.New("unknown subject")
)

// Options configures a Service.
type Options struct {
	Policy   progress.Policy
	Location *time.Location // calendar used for "today"; nil means UTC
	Logger   *zap.Logger
}

// Service runs lessons for users.
type Service struct {
	st           *store.Store
	achievements *achievements.Service
	policy       progress.Policy
	loc          *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a Service backed by st.
func NewService(st *store.Store, opts Options) *Service {
	if opts.Policy == (progress.Policy{}) {
		opts.Policy = progress.DefaultPolicy()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		st:           st,
		achievements: achievements.NewService(st.AchievementRepo()),
		policy:       opts.Policy,
		loc:          opts.Location,
		logger:       opts.Logger,
		now:          time.Now,
	}
}

// Today returns the current calendar date in the service's time zone.
func (s *Service) Today() progress.Date {
	return progress.Today(s.now(), s.loc)
}

// Attempt is one run through a lesson's quiz.
type Attempt struct {
	ID      string
	UserID  string
	Lesson  store.Lesson
	Quiz    *quiz.Session
	Started time.Time

	// Previous is the user's last recorded run of the lesson, or nil.
	Previous *store.LessonProgress

	recorded bool
}

// Open loads a lesson and its questions and starts an attempt.
func (s *Service) Open(ctx context.Context, userID, lessonID string) (*Attempt, error) {
	var (
		lesson    *store.Lesson
		questions []quiz.Question
		previous  *store.LessonProgress
	)
	repo := s.st.LessonRepo()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lesson, err = repo.Lesson(gctx, lessonID)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = repo.Questions(gctx, lessonID)
		return err
	})
	g.Go(func() error {
		p, err := s.st.ProgressRepo().Get(gctx, userID, lessonID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		previous = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("open lesson: %w", err)
	}

	session, err := quiz.NewSession(questions)
	if err != nil {
		return nil, fmt.Errorf("open lesson %q: %w", lessonID, err)
	}

	a := &Attempt{
		ID:       uuid.NewString(),
		UserID:   userID,
		Lesson:   *lesson,
		Quiz:     session,
		Started:  s.now(),
		Previous: previous,
	}

	err = s.st.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: a.ID,
		UserID:    userID,
		LessonID:  lessonID,
		Action:    store.ActionStart,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson opened",
		zap.String("user_id", userID),
		zap.String("lesson_id", lessonID),
		zap.String("session_id", a.ID),
		zap.Int("questions", session.Total()),
	)
	return a, nil
}

// Confirm confirms the attempt's selected option and logs the answer.
// It reports false when the quiz is not waiting for a confirmation.
// The answer log is best-effort: a failed write is logged and the quiz
// keeps the confirmed answer, since only Complete updates statistics.
func (s *Service) Confirm(ctx context.Context, a *Attempt) (quiz.AnswerRecord, bool) {
	if !a.Quiz.Confirm() {
		return quiz.AnswerRecord{}, false
	}
	rec, _ := a.Quiz.LastAnswer()

	var questionID string
	if q, ok := a.Quiz.Current(); ok {
		questionID = q.ID
	}
	err := s.st.EventRepo().AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:     a.ID,
		UserID:        a.UserID,
		LessonID:      a.Lesson.ID,
		QuestionID:    questionID,
		QuestionIndex: rec.QuestionIndex,
		Selected:      rec.Selected,
		Correct:       rec.Correct,
	})
	if err != nil {
		s.logger.Warn("answer event not saved",
			zap.String("session_id", a.ID),
			zap.Int("question_index", rec.QuestionIndex),
			zap.Error(err),
		)
	}
	return rec, true
}

// Outcome is what completing an attempt changed.
type Outcome struct {
	Result        quiz.Result
	PointsAwarded int
	Previous      *progress.Snapshot // nil on the user's first lesson
	Stats         progress.Snapshot
	Awards        []achievements.Award
}

// StreakExtended reports whether the lesson grew the current streak.
func (o *Outcome) StreakExtended() bool {
	if o.Previous == nil {
		return true
	}
	return o.Stats.CurrentStreak > o.Previous.CurrentStreak
}

// LeveledUp reports whether the lesson raised the user's level.
func (o *Outcome) LeveledUp() bool {
	return o.Previous != nil && o.Stats.Level > o.Previous.Level
}

// Complete applies a finished attempt. The lesson progress, statistics,
// achievements and session end event are written in one transaction so
// the statistics update reads and writes a single snapshot.
func (s *Service) Complete(ctx context.Context, a *Attempt, today progress.Date) (*Outcome, error) {
	if !a.Quiz.Complete() {
		return nil, ErrNotComplete
	}
	if a.recorded {
		return nil, ErrAlreadyRecorded
	}

	result := a.Quiz.Result()
	minutes := a.Lesson.DurationMinutes
	out := &Outcome{
		Result:        result,
		PointsAwarded: s.policy.Points(result.Score),
	}

	err := s.st.WithinTx(ctx, func(tx *store.Tx) error {
		err := tx.ProgressRepo().Upsert(ctx, store.LessonProgress{
			UserID:           a.UserID,
			LessonID:         a.Lesson.ID,
			Completed:        true,
			Score:            result.Score,
			TimeSpentMinutes: minutes,
			CompletedAt:      s.now(),
		})
		if err != nil {
			return err
		}

		stats := tx.StatsRepo()
		prev, err := stats.Get(ctx, a.UserID)
		if err != nil {
			return err
		}
		out.Previous = prev
		out.Stats = s.policy.Update(prev, today, result.Score, minutes)
		if err := stats.Put(ctx, a.UserID, out.Stats); err != nil {
			return err
		}

		out.Awards, err = s.achievements.WithRepo(tx.AchievementRepo()).Check(ctx, a.UserID, out.Stats)
		if err != nil {
			return err
		}

		return tx.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:       a.ID,
			UserID:          a.UserID,
			LessonID:        a.Lesson.ID,
			Action:          store.ActionEnd,
			QuestionsServed: result.Total,
			CorrectAnswers:  result.Correct,
			Score:           result.Score,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("complete lesson %q: %w", a.Lesson.ID, err)
	}
	a.recorded = true

	s.logger.Info("lesson completed",
		zap.String("user_id", a.UserID),
		zap.String("lesson_id", a.Lesson.ID),
		zap.Int("score", result.Score),
		zap.Int("points", out.PointsAwarded),
		zap.Int("streak", out.Stats.CurrentStreak),
		zap.Int("achievements", len(out.Awards)),
		zap.Duration("elapsed", s.now().Sub(a.Started)),
	)
	return out, nil
}

// SetPreferences stores the user's preferred subjects and daily goal.
func (s *Service) SetPreferences(ctx context.Context, p store.Preferences) error {
	if len(p.SubjectIDs) > 0 {
		subjects, err := s.st.LessonRepo().Subjects(ctx)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(subjects))
		for _, sub := range subjects {
			known[sub.ID] = true
		}
		for _, id := range p.SubjectIDs {
			if !known[id] {
				return fmt.Errorf("%w: %q", ErrUnknownSubject, id)
			}
		}
	}
	return s.st.PreferencesRepo().Put(ctx, p)
}

// Reset deletes everything recorded for the user. The catalog is kept.
func (s *Service) Reset(ctx context.Context, userID string) error {
	err := s.st.WithinTx(ctx, func(tx *store.Tx) error {
		if err := tx.StatsRepo().Delete(ctx, userID); err != nil {
			return err
		}
		if err := tx.ProgressRepo().DeleteUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.AchievementRepo().DeleteUser(ctx, userID); err != nil {
			return err
		}
		return tx.EventRepo().DeleteUser(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("reset %q: %w", userID, err)
	}
	s.logger.Info("user reset", zap.String("user_id", userID))
	return nil
}
