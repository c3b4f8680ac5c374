package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type LeaderboardStore struct {
	db *gorm.DB
}

func NewLeaderboardStore(db *gorm.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

// Upsert replaces the caller's prior leaderboard submission by
// username, matching the "latest evaluation wins" rule of the
// leaderboard module.
func (s *LeaderboardStore) Upsert(ctx context.Context, e *domain.LeaderboardEntry) error {
	row := toLeaderboardRow(e)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "avatar", "country", "primary_languages",
			"overall_score", "overall_level", "opted_in", "consent_at", "submitted_at",
		}),
	}).Create(row).Error
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "upsert leaderboard entry", err)
	}
	return nil
}

func (s *LeaderboardStore) Get(ctx context.Context, username string) (*domain.LeaderboardEntry, error) {
	var row leaderboardRow
	if err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "leaderboard entry not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "get leaderboard entry", err)
	}
	return fromLeaderboardRow(&row), nil
}

func (s *LeaderboardStore) List(ctx context.Context, country, level, language string, limit int) ([]domain.LeaderboardEntry, int64, error) {
	var rows []leaderboardRow
	var total int64

	q := s.db.WithContext(ctx).Model(&leaderboardRow{}).Where("opted_in = ?", true)
	if country != "" {
		q = q.Where("country = ?", country)
	}
	if level != "" {
		q = q.Where("overall_level = ?", level)
	}
	if language != "" {
		q = q.Where("primary_languages @> ?", `["`+language+`"]`)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "count leaderboard", err)
	}

	if err := q.Order("overall_score DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "list leaderboard", err)
	}

	out := make([]domain.LeaderboardEntry, len(rows))
	for i := range rows {
		out[i] = *fromLeaderboardRow(&rows[i])
	}
	return out, total, nil
}
