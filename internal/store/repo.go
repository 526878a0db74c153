package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/aprende/internal/progress"
	"github.com/abhisek/aprende/internal/quiz"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// Subject groups lessons by topic.
type Subject struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
}

// Lesson is a unit of study followed by a quiz.
type Lesson struct {
	ID              string
	SubjectID       string
	Title           string
	Content         string
	DurationMinutes int
	Difficulty      string
	VideoURL        string
	OrderIndex      int
}

// LessonRepo reads and writes the lesson catalog.
type LessonRepo interface {
	// UpsertSubject creates or replaces a subject.
	UpsertSubject(ctx context.Context, s Subject) error

	// Subjects returns all subjects ordered by name.
	Subjects(ctx context.Context) ([]Subject, error)

	// UpsertLesson creates or replaces a lesson.
	UpsertLesson(ctx context.Context, l Lesson) error

	// Lesson returns a lesson by ID, or ErrNotFound.
	Lesson(ctx context.Context, id string) (*Lesson, error)

	// ListLessons returns lessons ordered by OrderIndex (limit 0 = all).
	ListLessons(ctx context.Context, limit int) ([]Lesson, error)

	// ReplaceQuestions swaps the full question list of a lesson.
	ReplaceQuestions(ctx context.Context, lessonID string, questions []quiz.Question) error

	// Questions returns a lesson's questions in quiz order.
	Questions(ctx context.Context, lessonID string) ([]quiz.Question, error)
}

// StatsRepo keeps one statistics snapshot per user.
type StatsRepo interface {
	// Get returns the user's snapshot, or nil if none exists.
	Get(ctx context.Context, userID string) (*progress.Snapshot, error)

	// Put stores snap as the user's current snapshot.
	Put(ctx context.Context, userID string, snap progress.Snapshot) error

	// Delete removes the user's snapshot.
	Delete(ctx context.Context, userID string) error
}

// LessonProgress records a user's latest attempt at a lesson.
type LessonProgress struct {
	UserID           string
	LessonID         string
	Completed        bool
	Score            int
	TimeSpentMinutes int
	CompletedAt      time.Time
}

// ProgressRepo stores per-lesson progress, one row per (user, lesson).
type ProgressRepo interface {
	// Upsert creates the row or overwrites the previous attempt.
	Upsert(ctx context.Context, p LessonProgress) error

	// Get returns the user's progress on a lesson, or ErrNotFound.
	Get(ctx context.Context, userID, lessonID string) (*LessonProgress, error)

	// CompletedLessons returns the set of lesson IDs the user completed.
	CompletedLessons(ctx context.Context, userID string) (map[string]bool, error)

	// DeleteUser removes all of the user's progress rows.
	DeleteUser(ctx context.Context, userID string) error
}

// AchievementRecord is an unlocked achievement.
type AchievementRecord struct {
	Code       string
	UnlockedAt time.Time
}

// AchievementRepo tracks which achievements each user has unlocked.
type AchievementRepo interface {
	// Unlock records code for the user. It reports false when the
	// achievement was already unlocked.
	Unlock(ctx context.Context, userID, code string, at time.Time) (bool, error)

	// Unlocked returns the user's achievements, oldest first.
	Unlocked(ctx context.Context, userID string) ([]AchievementRecord, error)

	// DeleteUser removes all of the user's achievements.
	DeleteUser(ctx context.Context, userID string) error
}

// Preferences are a user's learning settings.
type Preferences struct {
	UserID       string
	SubjectIDs   []string // empty means every subject
	DailyMinutes int
}

// PreferencesRepo stores learning preferences.
type PreferencesRepo interface {
	// Get returns the user's preferences, or nil if none are stored.
	Get(ctx context.Context, userID string) (*Preferences, error)

	// Put creates or replaces the user's preferences.
	Put(ctx context.Context, p Preferences) error
}

// Session event actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// SessionEventData captures a quiz session lifecycle event.
type SessionEventData struct {
	SessionID       string
	UserID          string
	LessonID        string
	Action          string // ActionStart or ActionEnd
	QuestionsServed int    // on end only
	CorrectAnswers  int    // on end only
	Score           int    // on end only
}

// AnswerEventData captures one confirmed answer.
type AnswerEventData struct {
	SessionID     string
	UserID        string
	LessonID      string
	QuestionID    string
	QuestionIndex int
	Selected      int
	Correct       bool
}

// SessionSummaryRecord describes one finished quiz session.
type SessionSummaryRecord struct {
	SessionID       string
	LessonID        string
	Timestamp       time.Time
	QuestionsServed int
	CorrectAnswers  int
	Score           int
}

// EventRepo provides append and query access to quiz events.
type EventRepo interface {
	// AppendSessionEvent records a session start or end.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendAnswerEvent records a confirmed answer.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QuerySessionSummaries returns the user's finished sessions, newest first.
	QuerySessionSummaries(ctx context.Context, userID string, opts QueryOpts) ([]SessionSummaryRecord, error)

	// DeleteUser removes all of the user's events.
	DeleteUser(ctx context.Context, userID string) error
}

// Challenge types.
const (
	ChallengeDaily  = "daily"
	ChallengeWeekly = "weekly"
)

// Challenge is a time-boxed goal shown on the dashboard.
type Challenge struct {
	ID          string
	Title       string
	Description string
	Type        string // ChallengeDaily or ChallengeWeekly
	Points      int
	ActiveFrom  time.Time
	ActiveUntil time.Time
}

// ChallengeRepo stores challenges.
type ChallengeRepo interface {
	// Upsert creates or replaces a challenge.
	Upsert(ctx context.Context, c Challenge) error

	// Active returns up to limit daily challenges still active at now,
	// soonest to expire first. A limit of zero means no limit.
	Active(ctx context.Context, now time.Time, limit int) ([]Challenge, error)
}
