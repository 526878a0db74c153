package achievements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/aprende/internal/progress"
	"github.com/abhisek/aprende/internal/store"
)

// mockAchievementRepo implements store.AchievementRepo for tests.
type mockAchievementRepo struct {
	unlocked map[string]map[string]time.Time
	order    []string
	err      error
}

func newMockRepo() *mockAchievementRepo {
	return &mockAchievementRepo{unlocked: map[string]map[string]time.Time{}}
}

func (m *mockAchievementRepo) Unlock(_ context.Context, userID, code string, at time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.unlocked[userID] == nil {
		m.unlocked[userID] = map[string]time.Time{}
	}
	if _, ok := m.unlocked[userID][code]; ok {
		return false, nil
	}
	m.unlocked[userID][code] = at
	m.order = append(m.order, code)
	return true, nil
}

func (m *mockAchievementRepo) Unlocked(_ context.Context, userID string) ([]store.AchievementRecord, error) {
	var out []store.AchievementRecord
	for _, code := range m.order {
		if at, ok := m.unlocked[userID][code]; ok {
			out = append(out, store.AchievementRecord{Code: code, UnlockedAt: at})
		}
	}
	return out, nil
}

func (m *mockAchievementRepo) DeleteUser(_ context.Context, userID string) error {
	delete(m.unlocked, userID)
	return nil
}

func newTestService(repo store.AchievementRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func codes(awards []Award) []string {
	out := make([]string, len(awards))
	for i, a := range awards {
		out[i] = a.Code
	}
	return out
}

func TestCheck_FirstLesson(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	awards, err := svc.Check(context.Background(), "ana", progress.Snapshot{
		LessonsCompleted: 1, CurrentStreak: 1, LongestStreak: 1, TotalPoints: 20, TotalMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first_lesson"}, codes(awards))
	assert.Equal(t, "First Steps", awards[0].Name)
	assert.Equal(t, 2024, awards[0].UnlockedAt.Year())
}

func TestCheck_OnlyNewAwards(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	snap := progress.Snapshot{LessonsCompleted: 5, LongestStreak: 3, TotalPoints: 100, TotalMinutes: 60}
	awards, err := svc.Check(ctx, "ana", snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_lesson", "lessons_5", "streak_3", "points_100", "minutes_60"}, codes(awards))

	awards, err = svc.Check(ctx, "ana", snap)
	require.NoError(t, err)
	assert.Empty(t, awards, "nothing new on the same snapshot")

	snap.LongestStreak = 7
	awards, err = svc.Check(ctx, "ana", snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"streak_7"}, codes(awards))
}

func TestCheck_RepoError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("db down")
	svc := newTestService(repo)

	_, err := svc.Check(context.Background(), "ana", progress.Snapshot{LessonsCompleted: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.err)
}

func TestCheck_NothingMet(t *testing.T) {
	svc := newTestService(newMockRepo())
	awards, err := svc.Check(context.Background(), "ana", progress.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, awards)
}

func TestUnlocked(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Check(ctx, "ana", progress.Snapshot{LessonsCompleted: 1})
	require.NoError(t, err)
	_, err = repo.Unlock(ctx, "ana", "legacy_badge", time.Now())
	require.NoError(t, err)

	got, err := svc.Unlocked(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindLessons, got[0].Kind)
	assert.Equal(t, "legacy_badge", got[1].Name)
}

func TestWithRepo(t *testing.T) {
	first, second := newMockRepo(), newMockRepo()
	svc := newTestService(first)
	bound := svc.WithRepo(second)

	_, err := bound.Check(context.Background(), "ana", progress.Snapshot{LessonsCompleted: 1})
	require.NoError(t, err)
	assert.Empty(t, first.order)
	assert.Equal(t, []string{"first_lesson"}, second.order)
	assert.Len(t, svc.Catalog(), len(bound.Catalog()))
}
