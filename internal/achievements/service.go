package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/aprende/internal/progress"
	"github.com/abhisek/aprende/internal/store"
)

// Award is an achievement unlocked for a user.
type Award struct {
	Achievement
	UnlockedAt time.Time
}

// Service evaluates snapshots against a catalog and records unlocks.
type Service struct {
	catalog []Achievement
	repo    store.AchievementRepo
	now     func() time.Time
}

// NewService creates a Service over the default catalog.
func NewService(repo store.AchievementRepo) *Service {
	return &Service{
		catalog: DefaultCatalog(),
		repo:    repo,
		now:     time.Now,
	}
}

// WithRepo returns a copy of the service that records into repo, e.g. a
// repository bound to a transaction.
func (s *Service) WithRepo(repo store.AchievementRepo) *Service {
	cp := *s
	cp.repo = repo
	return &cp
}

// Catalog returns the achievements the service evaluates.
func (s *Service) Catalog() []Achievement {
	return s.catalog
}

// Check unlocks every achievement the snapshot meets and returns the ones
// that were not unlocked before, in catalog order.
func (s *Service) Check(ctx context.Context, userID string, snap progress.Snapshot) ([]Award, error) {
	at := s.now()
	var awards []Award
	for _, a := range s.catalog {
		if !a.Met(snap) {
			continue
		}
		unlocked, err := s.repo.Unlock(ctx, userID, a.Code, at)
		if err != nil {
			return nil, fmt.Errorf("unlock %s: %w", a.Code, err)
		}
		if unlocked {
			awards = append(awards, Award{Achievement: a, UnlockedAt: at})
		}
	}
	return awards, nil
}

// Unlocked returns the user's achievements, oldest first. Codes missing
// from the catalog are reported with the code as their name.
func (s *Service) Unlocked(ctx context.Context, userID string) ([]Award, error) {
	records, err := s.repo.Unlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	awards := make([]Award, 0, len(records))
	for _, r := range records {
		a, ok := Lookup(s.catalog, r.Code)
		if !ok {
			a = Achievement{Code: r.Code, Name: r.Code}
		}
		awards = append(awards, Award{Achievement: a, UnlockedAt: r.UnlockedAt})
	}
	return awards, nil
}
