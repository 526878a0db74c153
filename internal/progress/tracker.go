package progress

// Policy holds the tunable constants of the statistics update.
type Policy struct {
	// MaxPoints is awarded for a perfect quiz; lower scores scale linearly.
	MaxPoints int

	// PointsPerLevel is the number of points between levels.
	PointsPerLevel int
}

// DefaultPolicy returns the standard policy: 20 points for a perfect quiz
// and a new level every 100 points.
func DefaultPolicy() Policy {
	return Policy{
		MaxPoints:      20,
		PointsPerLevel: 100,
	}
}

// Points returns round(score / 100 * MaxPoints) with halves rounded up.
func (p Policy) Points(score int) int {
	return (2*score*p.MaxPoints + 100) / 200
}

// Level returns the level reached with totalPoints. Everyone starts at 1.
func (p Policy) Level(totalPoints int) int {
	if p.PointsPerLevel <= 0 || totalPoints <= 0 {
		return 1
	}
	return 1 + totalPoints/p.PointsPerLevel
}

// Update returns the statistics after one more completed lesson.
//
// prev may be nil for a user's first lesson. today is the calendar day of
// the completion as decided by the caller. prev is never modified and the
// function has no failure mode: a malformed prev yields an equally
// malformed result.
func (p Policy) Update(prev *Snapshot, today Date, score, minutes int) Snapshot {
	var next Snapshot
	if prev != nil {
		next = *prev
	}

	next.CurrentStreak = NextStreak(prev, today)
	next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)
	next.LessonsCompleted++
	next.TotalPoints += p.Points(score)
	next.TotalMinutes += minutes
	next.Level = p.Level(next.TotalPoints)
	next.LastActivity = today
	return next
}

// NextStreak returns the current streak after activity on today.
//
// A repeat on the same day keeps the streak, the following day extends it,
// and anything else (a gap, a missing previous date, or a previous date
// after today) starts over at 1.
func NextStreak(prev *Snapshot, today Date) int {
	if prev == nil || prev.LastActivity.IsZero() {
		return 1
	}
	switch today.DaysSince(prev.LastActivity) {
	case 0:
		return prev.CurrentStreak
	case 1:
		return prev.CurrentStreak + 1
	default:
		return 1
	}
}

// Points is DefaultPolicy().Points.
func Points(score int) int { return DefaultPolicy().Points(score) }

// Update is DefaultPolicy().Update.
func Update(prev *Snapshot, today Date, score, minutes int) Snapshot {
	return DefaultPolicy().Update(prev, today, score, minutes)
}
