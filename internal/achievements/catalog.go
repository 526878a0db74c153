package achievements

import "fmt"

// StreakMilestones are the streak lengths with their own achievement.
var StreakMilestones = []int{3, 7, 14, 30}

// NextStreakMilestone returns the next streak milestone above current.
func NextStreakMilestone(current int) int {
	for _, m := range StreakMilestones {
		if m > current {
			return m
		}
	}
	// Beyond the ladder, every 30 days.
	return ((current / 30) + 1) * 30
}

// DefaultCatalog returns the built-in achievements, ordered by kind and
// then threshold.
func DefaultCatalog() []Achievement {
	catalog := []Achievement{
		{Code: "first_lesson", Name: "First Steps", Description: "Complete your first lesson", Kind: KindLessons, Threshold: 1},
		{Code: "lessons_5", Name: "Getting Going", Description: "Complete 5 lessons", Kind: KindLessons, Threshold: 5},
		{Code: "lessons_25", Name: "Bookworm", Description: "Complete 25 lessons", Kind: KindLessons, Threshold: 25},
		{Code: "lessons_100", Name: "Scholar", Description: "Complete 100 lessons", Kind: KindLessons, Threshold: 100},
	}
	for _, m := range StreakMilestones {
		catalog = append(catalog, Achievement{
			Code:        fmt.Sprintf("streak_%d", m),
			Name:        fmt.Sprintf("%d-Day Streak", m),
			Description: fmt.Sprintf("Study %d days in a row", m),
			Kind:        KindStreak,
			Threshold:   m,
		})
	}
	return append(catalog,
		Achievement{Code: "points_100", Name: "Century", Description: "Earn 100 points", Kind: KindPoints, Threshold: 100},
		Achievement{Code: "points_500", Name: "High Scorer", Description: "Earn 500 points", Kind: KindPoints, Threshold: 500},
		Achievement{Code: "points_1000", Name: "Point Master", Description: "Earn 1000 points", Kind: KindPoints, Threshold: 1000},
		Achievement{Code: "minutes_60", Name: "Focused Hour", Description: "Study for 60 minutes", Kind: KindMinutes, Threshold: 60},
		Achievement{Code: "minutes_600", Name: "Dedicated", Description: "Study for 10 hours", Kind: KindMinutes, Threshold: 600},
	)
}

// Lookup finds an achievement by code.
func Lookup(catalog []Achievement, code string) (Achievement, bool) {
	for _, a := range catalog {
		if a.Code == code {
			return a, true
		}
	}
	return Achievement{}, false
}
