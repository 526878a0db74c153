package learn

import (
	"context"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/aprende/internal/achievements"
	"github.com/abhisek/aprende/internal/progress"
	"github.com/abhisek/aprende/internal/store"
)

const (
	// RecommendedLimit caps the recommended lesson list.
	RecommendedLimit = 10

	// ChallengeLimit caps the active challenges shown on the dashboard.
	ChallengeLimit = 3
)

var motivationalPhrases = []string{
	"Every small step counts!",
	"Keep it up, you're doing great!",
	"Knowledge is power!",
	"Today is a great day to learn!",
	"Your effort is worth it!",
	"Never stop growing!",
}

// LessonItem is a lesson in the recommended list.
type LessonItem struct {
	store.Lesson
	Completed bool
}

// Dashboard is the overview shown to a user.
type Dashboard struct {
	Stats        progress.Snapshot
	NextStreak   int // next streak milestone
	Achievements []achievements.Award
	Available    int // achievements in the catalog
	Challenges   []store.Challenge
	Lessons      []LessonItem
	Phrase       string
}

// Recommended returns up to RecommendedLimit lessons in catalog order,
// restricted to the user's preferred subjects when any are set.
func (s *Service) Recommended(ctx context.Context, userID string) ([]LessonItem, error) {
	var (
		prefs   *store.Preferences
		lessons []store.Lesson
		done    map[string]bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prefs, err = s.st.PreferencesRepo().Get(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		lessons, err = s.st.LessonRepo().ListLessons(gctx, 0)
		return err
	})
	g.Go(func() error {
		var err error
		done, err = s.st.ProgressRepo().CompletedLessons(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recommended lessons: %w", err)
	}

	var wanted map[string]bool
	if prefs != nil && len(prefs.SubjectIDs) > 0 {
		wanted = make(map[string]bool, len(prefs.SubjectIDs))
		for _, id := range prefs.SubjectIDs {
			wanted[id] = true
		}
	}

	items := make([]LessonItem, 0, min(len(lessons), RecommendedLimit))
	for _, l := range lessons {
		if wanted != nil && !wanted[l.SubjectID] {
			continue
		}
		items = append(items, LessonItem{Lesson: l, Completed: done[l.ID]})
		if len(items) == RecommendedLimit {
			break
		}
	}
	return items, nil
}

// Dashboard loads the user's statistics, achievements, active daily
// challenges and recommended lessons. rnd picks the motivational phrase;
// nil picks the first one.
func (s *Service) Dashboard(ctx context.Context, userID string, rnd *rand.Rand) (*Dashboard, error) {
	d := &Dashboard{Available: len(s.achievements.Catalog())}
	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.st.StatsRepo().Get(gctx, userID)
		if err != nil {
			return err
		}
		if snap != nil {
			d.Stats = *snap
		} else {
			d.Stats.Level = s.policy.Level(0)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		d.Achievements, err = s.achievements.Unlocked(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Challenges, err = s.st.ChallengeRepo().Active(gctx, now, ChallengeLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.Lessons, err = s.Recommended(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	d.NextStreak = achievements.NextStreakMilestone(d.Stats.CurrentStreak)
	d.Phrase = MotivationalPhrase(rnd)
	return d, nil
}

// MotivationalPhrase picks a phrase with rnd, or the first phrase when rnd
// is nil.
func MotivationalPhrase(rnd *rand.Rand) string {
	if rnd == nil {
		return motivationalPhrases[0]
	}
	return motivationalPhrases[rnd.IntN(len(motivationalPhrases))]
}

// HistoryEntry is a finished attempt with its lesson title.
type HistoryEntry struct {
	store.SessionSummaryRecord
	LessonTitle string
}

// History returns the user's most recent finished attempts, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	records, err := s.st.EventRepo().QuerySessionSummaries(ctx, userID, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, err
	}

	lessons, err := s.st.LessonRepo().ListLessons(ctx, 0)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(lessons))
	for _, l := range lessons {
		titles[l.ID] = l.Title
	}

	entries := make([]HistoryEntry, len(records))
	for i, r := range records {
		title, ok := titles[r.LessonID]
		if !ok {
			title = r.LessonID
		}
		entries[i] = HistoryEntry{SessionSummaryRecord: r, LessonTitle: title}
	}
	return entries, nil
}
