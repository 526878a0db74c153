package achievements

import "github.com/abhisek/aprende/internal/progress"

// Kind identifies which statistic an achievement is measured against.
type Kind string

const (
	KindLessons Kind = "lessons_completed"
	KindStreak  Kind = "streak_days"
	KindPoints  Kind = "total_points"
	KindMinutes Kind = "total_minutes"
)

// AllKinds returns all kinds in display order.
func AllKinds() []Kind {
	return []Kind{KindLessons, KindStreak, KindPoints, KindMinutes}
}

// DisplayName returns a human-readable label for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindLessons:
		return "Lessons"
	case KindStreak:
		return "Streak"
	case KindPoints:
		return "Points"
	case KindMinutes:
		return "Study time"
	default:
		return string(k)
	}
}

// Icon returns the display icon for the kind.
func (k Kind) Icon() string {
	switch k {
	case KindLessons:
		return "📚"
	case KindStreak:
		return "🔥"
	case KindPoints:
		return "⭐"
	case KindMinutes:
		return "⏱️"
	default:
		return "✦"
	}
}

// Value reads the statistic the kind measures from a snapshot.
// For streaks this is the longest streak, so a broken streak keeps
// counting toward milestones already reached.
func (k Kind) Value(s progress.Snapshot) int {
	switch k {
	case KindLessons:
		return s.LessonsCompleted
	case KindStreak:
		return s.LongestStreak
	case KindPoints:
		return s.TotalPoints
	case KindMinutes:
		return s.TotalMinutes
	default:
		return 0
	}
}

// Achievement is a threshold on one statistic.
type Achievement struct {
	Code        string
	Name        string
	Description string
	Kind        Kind
	Threshold   int
}

// Met reports whether the snapshot reaches the threshold.
func (a Achievement) Met(s progress.Snapshot) bool {
	return a.Kind.Value(s) >= a.Threshold
}
