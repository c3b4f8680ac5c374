// Package leaderboard wraps store.LeaderboardStore with the
// optional-filter list shape the teacher uses for
// ProjectRepository.GetProjects(featured *bool) — generalized here to
// three optional string filters instead of one optional bool.
package leaderboard

import (
	"context"

	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/store"
)

type Service struct {
	store store.LeaderboardStore
}

func New(s store.LeaderboardStore) *Service {
	return &Service{store: s}
}

func (s *Service) Upsert(ctx context.Context, e *domain.LeaderboardEntry) error {
	return s.store.Upsert(ctx, e)
}

func (s *Service) Get(ctx context.Context, username string) (*domain.LeaderboardEntry, error) {
	return s.store.Get(ctx, username)
}

func (s *Service) List(ctx context.Context, country, level, language string, limit int) ([]domain.LeaderboardEntry, int64, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.store.List(ctx, country, level, language, limit)
}
