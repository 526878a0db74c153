package progress

// Snapshot is a user's cumulative statistics at one point in time. It is a
// plain value: copying it never shares state.
type Snapshot struct {
	LessonsCompleted int
	CurrentStreak    int // consecutive days with a completed lesson
	LongestStreak    int
	TotalPoints      int
	TotalMinutes     int
	Level            int
	LastActivity     Date // zero when the user has never completed a lesson
}
